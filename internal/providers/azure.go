package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gitguardhq/gitguard/internal/config"
)

const azureDefaultAPIVersion = "2024-02-15-preview"

// Azure implements the Completer interface for Azure OpenAI deployments.
type Azure struct {
	apiKey     string
	endpoint   string
	deployment string
	apiVersion string
	client     *http.Client
}

// NewAzure creates an Azure OpenAI provider. The API key comes from the
// AZURE_OPENAI_API_KEY environment variable.
func NewAzure(cfg config.AIConfig) (*Azure, error) {
	key := os.Getenv("AZURE_OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("AZURE_OPENAI_API_KEY environment variable is not set")
	}
	if cfg.Endpoint == "" || cfg.Deployment == "" {
		return nil, fmt.Errorf("azure provider requires an endpoint and a deployment")
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = azureDefaultAPIVersion
	}
	return &Azure{
		apiKey:     key,
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		deployment: cfg.Deployment,
		apiVersion: apiVersion,
		client:     &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func (a *Azure) Name() string { return "azure" }

func (a *Azure) Complete(ctx context.Context, req Request) (Response, error) {
	body := chatRequest{
		Messages:       chatMessages(req),
		Temperature:    req.Temperature,
		MaxTokens:      maxTokensOr(req.MaxTokens),
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		a.endpoint, a.deployment, a.apiVersion)
	respBody, err := postJSON(ctx, a.client, url, map[string]string{"api-key": a.apiKey}, payload)
	if err != nil {
		return Response{}, err
	}
	return parseChat(respBody, a.deployment)
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gitguardhq/gitguard/internal/config"
)

const (
	openAIAPIURL       = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4o"
)

// OpenAI implements the Completer interface for OpenAI's API.
type OpenAI struct {
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAI creates an OpenAI provider. The API key comes from the
// OPENAI_API_KEY environment variable.
func NewOpenAI(cfg config.AIConfig) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAI{
		apiKey: key,
		model:  model,
		client: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	body := chatRequest{
		Model:          o.model,
		Messages:       chatMessages(req),
		Temperature:    req.Temperature,
		MaxTokens:      maxTokensOr(req.MaxTokens),
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	respBody, err := postJSON(ctx, o.client, openAIAPIURL, headers, payload)
	if err != nil {
		return Response{}, err
	}
	return parseChat(respBody, o.model)
}

package providers

import (
	"context"
	"fmt"

	"github.com/gitguardhq/gitguard/internal/config"
)

// Request contains the prompt sent to an AI provider.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response contains the raw completion from an AI provider.
type Response struct {
	Text       string
	TokensUsed int
	Model      string
}

// Completer is the provider abstraction interface.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a completer from configuration. A disabled config yields
// the Disabled no-op completer.
func New(cfg config.AIConfig) (Completer, error) {
	if !cfg.Enabled {
		return Disabled{}, nil
	}
	switch cfg.Provider {
	case "azure":
		return NewAzure(cfg)
	case "openai":
		return NewOpenAI(cfg)
	case "anthropic":
		return NewAnthropic(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Disabled is the no-op completer used for heuristic-only runs.
type Disabled struct{}

func (Disabled) Name() string { return "disabled" }

func (Disabled) Complete(context.Context, Request) (Response, error) {
	return Response{}, ErrDisabled
}

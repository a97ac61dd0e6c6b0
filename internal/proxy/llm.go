// Package proxy is the minimal scoring endpoint that forwards prompts to a
// language model and turns its replies into typed results.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log"

	"swipeinterview/internal/config"
)

var ErrMissingAPIKey = errors.New("AI API key not set")

// Completer sends a single-turn prompt to a language model
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// UpstreamError is a well-formed but unsuccessful reply from the model API.
// The proxy treats it as an empty completion rather than a server failure.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model API error: status %d, body: %s", e.Status, e.Body)
}

// NewCompleter builds the completer for the configured provider. It returns
// ErrMissingAPIKey when no key is configured.
func NewCompleter(ctx context.Context, cfg *config.AIConfig) (Completer, error) {
	if !cfg.IsEnabled() {
		return nil, ErrMissingAPIKey
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		g, err := NewGeminiCompleter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.ProviderOpenAI:
		return NewOpenAICompleter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

// NewServiceFromConfig builds the service for cfg. A missing key is only
// logged; the service then answers every call with ErrMissingAPIKey. Any
// other construction failure is returned.
func NewServiceFromConfig(ctx context.Context, cfg *config.AIConfig) (*Service, error) {
	completer, err := NewCompleter(ctx, cfg)
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		log.Printf("Warning: %v", err)
	case err != nil:
		return nil, err
	}
	return NewService(completer, cfg.ScoreTokens, cfg.GenerateTokens), nil
}

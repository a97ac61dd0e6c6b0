package proxy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"swipeinterview/internal/config"
)

// GeminiCompleter calls Gemini through the genai SDK
type GeminiCompleter struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiCompleter creates a Gemini API client
func NewGeminiCompleter(ctx context.Context, cfg *config.AIConfig) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL}, // empty means the public endpoint
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiCompleter{
		client:  client,
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(maxTokens),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Status: apiErr.Code, Body: apiErr.Message}
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

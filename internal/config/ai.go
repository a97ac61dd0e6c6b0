package config

import (
	"os"
	"strings"
)

// Provider names the language model vendor behind the scoring proxy
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// AIConfig holds all AI-related configuration
type AIConfig struct {
	Provider       Provider `json:"provider"`
	APIKey         string   `json:"-"` // Never serialize
	BaseURL        string   `json:"baseUrl"`
	Model          string   `json:"model"`
	ScoreTokens    int      `json:"scoreTokens"`
	GenerateTokens int      `json:"generateTokens"`
	TimeoutMS      int      `json:"timeoutMs"`
}

// DefaultAIConfig returns the AI configuration for the selected provider
func DefaultAIConfig() *AIConfig {
	provider := Provider(strings.ToLower(getEnvOrDefault("AI_PROVIDER", string(ProviderOpenAI))))

	cfg := &AIConfig{
		Provider:       provider,
		ScoreTokens:    getEnvAsInt("AI_SCORE_MAX_TOKENS", 200),
		GenerateTokens: getEnvAsInt("AI_GENERATE_MAX_TOKENS", 150),
		TimeoutMS:      getEnvAsInt("AI_TIMEOUT_MS", 10000),
	}

	switch provider {
	case ProviderGemini:
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
		cfg.BaseURL = os.Getenv("GEMINI_BASE_URL")
		cfg.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash")
	default:
		cfg.Provider = ProviderOpenAI
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
		cfg.Model = getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini")
	}
	return cfg
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ChatEndpoint returns the chat completions endpoint for OpenAI-compatible APIs
func (c *AIConfig) ChatEndpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

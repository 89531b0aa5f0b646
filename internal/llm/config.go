package llm

import (
	"time"

	"codeberg.org/boomline/server/internal/config"
)

const defaultTimeout = 60 * time.Second

// holds configuration for provider client initialization
type Config struct {
	TextProvider   Provider
	VisionProvider Provider

	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	// total request timeout for every provider call
	Timeout time.Duration
}

// derives the LLM configuration from the application config
func NewConfig(cfg *config.Config) *Config {
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Config{
		TextProvider:   Provider(cfg.TextProvider),
		VisionProvider: Provider(cfg.VisionProvider),
		OpenAIKey:      cfg.OpenAIKey,
		AnthropicKey:   cfg.AnthropicKey,
		GeminiKey:      cfg.GeminiKey,
		Timeout:        timeout,
	}
}

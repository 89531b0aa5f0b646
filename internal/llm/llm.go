package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// the provider clients the service needs, built once at startup
type Clients struct {
	Text   ChatCompleter
	Vision ChatCompleter
	Images ImageGenerator

	closers []io.Closer
}

// creates the provider clients described by config
func New(ctx context.Context, config *Config) (*Clients, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	httpClient := newHTTPClient(config.Timeout)
	clients := &Clients{}

	// one client per provider, shared between text and vision
	built := map[Provider]ChatCompleter{}

	build := func(provider Provider) (ChatCompleter, error) {
		if c, ok := built[provider]; ok {
			return c, nil
		}

		apiKey := apiKeyForProvider(provider, config)

		var completer ChatCompleter

		switch provider {
		case ProviderOpenAI:
			completer = NewOpenAIClient(OpenAIConfig{APIKey: apiKey, HTTPClient: httpClient})
		case ProviderAnthropic:
			completer = NewAnthropicClient(AnthropicConfig{APIKey: apiKey, HTTPClient: httpClient})
		case ProviderGemini:
			gemini, err := NewGeminiClient(ctx, GeminiConfig{APIKey: apiKey, HTTPClient: httpClient})
			if err != nil {
				return nil, err
			}

			clients.closers = append(clients.closers, gemini)
			completer = gemini
		default:
			return nil, fmt.Errorf("unsupported provider: %s", provider)
		}

		built[provider] = completer

		return completer, nil
	}

	var err error

	if clients.Text, err = build(config.TextProvider); err != nil {
		return nil, err
	}

	if clients.Vision, err = build(config.VisionProvider); err != nil {
		return nil, err
	}

	// image generation is always served by OpenAI
	if openai, ok := built[ProviderOpenAI].(*OpenAIClient); ok {
		clients.Images = openai
	} else {
		clients.Images = NewOpenAIClient(OpenAIConfig{APIKey: config.OpenAIKey, HTTPClient: httpClient})
	}

	return clients, nil
}

// releases provider resources
func (c *Clients) Close() error {
	var errs []error

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

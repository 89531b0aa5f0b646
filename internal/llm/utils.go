package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// returns the appropriate API key for the given provider
func apiKeyForProvider(provider Provider, cfg *Config) string {
	switch provider {
	case ProviderOpenAI:
		return cfg.OpenAIKey
	case ProviderGemini:
		return cfg.GeminiKey
	default:
		return cfg.AnthropicKey
	}
}

// builds an HTTP client that reuses its connection pool across calls
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// encodes inline image bytes as a data URL
func dataURL(img Image) string {
	return fmt.Sprintf("data:%s;base64,%s", img.MediaType, base64.StdEncoding.EncodeToString(img.Data))
}

// sends a JSON POST and decodes a 200 answer into out
func postJSON(
	ctx context.Context,
	client *http.Client,
	limiter *rate.Limiter,
	provider Provider,
	url string,
	headers map[string]string,
	body any,
	out any,
) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// rate limiting
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck
		return &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// downloads an image referenced by URL for providers that only take inline bytes
func fetchImage(ctx context.Context, client *http.Client, img Image) (Image, error) {
	if len(img.Data) > 0 || img.URL == "" {
		return img, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, img.URL, nil)
	if err != nil {
		return img, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return img, fmt.Errorf("failed to fetch image: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return img, fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return img, fmt.Errorf("failed to read image: %w", err)
	}

	if img.MediaType == "" {
		img.MediaType = resp.Header.Get("Content-Type")
	}

	img.Data = data

	return img, nil
}

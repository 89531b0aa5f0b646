package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// timeout for API requests; image generation is the slow path
const requestTimeout = 90 * time.Second

// API is the part of the boomline REST API the terminal client uses
type API interface {
	Generate(ctx context.Context, contentType, prompt string) (*GenerateResponse, error)
	Translate(ctx context.Context, text, language string) (*TranslateResponse, error)
}

// manages HTTP requests to the boomline REST API
type Client struct {
	endpoint   string
	clientID   string
	httpClient *http.Client
}

// creates a new REST client
func NewClient(endpoint, clientID string) *Client {
	return &Client{
		endpoint: endpoint,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// sends a generate request
func (c *Client) Generate(ctx context.Context, contentType, prompt string) (*GenerateResponse, error) {
	var out GenerateResponse

	err := c.post(ctx, "/api/generate", generateRequest{Prompt: prompt, ContentType: contentType}, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

// sends a translate request
func (c *Client) Translate(ctx context.Context, text, language string) (*TranslateResponse, error) {
	var out TranslateResponse

	err := c.post(ctx, "/api/translate", translateRequest{Text: text, TargetLanguage: language}, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Message = string(bytes.TrimSpace(body))
		}

		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// REST API request/response types

type generateRequest struct {
	Prompt      string `json:"prompt"`
	ContentType string `json:"contentType"`
}

type GenerateResponse struct {
	Kind      string `json:"kind"`
	Result    string `json:"result"`
	ImageURL  string `json:"imageUrl"`
	Remaining int    `json:"remaining"`
	Warning   string `json:"warning"`
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

type TranslateResponse struct {
	Translated string `json:"translated"`
	Language   string `json:"language"`
	Skipped    bool   `json:"skipped"`
}

// APIError is a non-200 answer from the server
type APIError struct {
	Status     int    `json:"-"`
	Code       string `json:"error"`
	Message    string `json:"message"`
	UpgradeURL string `json:"upgrade_url,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	anthropicBaseURL      = "https://api.anthropic.com/v1"
	anthropicVersion      = "2023-06-01"
	defaultAnthropicModel = "claude-3-haiku-20240307"
	defaultMaxTokens      = 1024
)

// rate limiter for Anthropic API calls (50 requests/second with burst capacity of 10)
var anthropicRateLimiter = rate.NewLimiter(50, 10)

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float32           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string           `json:"type"`
	Text   string           `json:"text,omitempty"`
	Source *anthropicSource `json:"source,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type anthropicResponse struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Role       string           `json:"role"`
	Content    []anthropicBlock `json:"content"`
	Model      string           `json:"model"`
	StopReason string           `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type AnthropicConfig struct {
	APIKey     string
	Model      string // e.g., "claude-3-haiku-20240307"
	MaxTokens  int    // used when the request sets none
	BaseURL    string
	HTTPClient *http.Client
}

type AnthropicClient struct {
	config     AnthropicConfig
	httpClient *http.Client
}

func NewAnthropicClient(config AnthropicConfig) *AnthropicClient {
	if config.Model == "" {
		config.Model = defaultAnthropicModel
	}

	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}

	if config.BaseURL == "" {
		config.BaseURL = anthropicBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(defaultTimeout)
	}

	return &AnthropicClient{
		config:     config,
		httpClient: httpClient,
	}
}

func (c *AnthropicClient) Provider() Provider {
	return ProviderAnthropic
}

// OpenAI model names are replaced by the configured Claude model
func (c *AnthropicClient) model(requested string) string {
	if strings.HasPrefix(requested, "claude") {
		return requested
	}

	return c.config.Model
}

func (c *AnthropicClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	// determine max tokens (use request value or fall back to config)
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.config.MaxTokens
	}

	messages := make([]anthropicMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, toAnthropicMessage(msg))
	}

	body := anthropicRequest{
		Model:     c.model(req.Model),
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  messages,
	}

	if req.Temperature > 0 {
		temp := req.Temperature
		body.Temperature = &temp
	}

	headers := map[string]string{
		"x-api-key":         c.config.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var apiResp anthropicResponse
	if err := postJSON(ctx, c.httpClient, anthropicRateLimiter, ProviderAnthropic,
		c.config.BaseURL+"/messages", headers, body, &apiResp); err != nil {
		return nil, err
	}

	// text blocks form a single choice
	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	resp := &ChatResponse{
		Provider: ProviderAnthropic,
		Model:    apiResp.Model,
		Usage: Usage{
			InputTokens:  apiResp.Usage.InputTokens,
			OutputTokens: apiResp.Usage.OutputTokens,
		},
	}

	if len(apiResp.Content) > 0 {
		resp.Choices = []Choice{{
			Message:      Message{Role: "assistant", Content: text.String()},
			FinishReason: apiResp.StopReason,
		}}
	}

	return resp, nil
}

func toAnthropicMessage(msg Message) anthropicMessage {
	role := msg.Role
	if role == "" {
		role = "user"
	}

	blocks := make([]anthropicBlock, 0, len(msg.Images)+1)

	// images first, then the instruction
	for _, img := range msg.Images {
		if len(img.Data) > 0 {
			blocks = append(blocks, anthropicBlock{
				Type: "image",
				Source: &anthropicSource{
					Type:      "base64",
					MediaType: img.MediaType,
					Data:      base64.StdEncoding.EncodeToString(img.Data),
				},
			})

			continue
		}

		blocks = append(blocks, anthropicBlock{
			Type:   "image",
			Source: &anthropicSource{Type: "url", URL: img.URL},
		})
	}

	if msg.Content != "" {
		blocks = append(blocks, anthropicBlock{Type: "text", Text: msg.Content})
	}

	return anthropicMessage{Role: role, Content: blocks}
}

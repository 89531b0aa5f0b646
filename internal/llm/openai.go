package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	openaiBaseURL        = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-3.5-turbo"
	defaultOpenAIImage   = "dall-e-3"
	defaultOpenAIImageSz = "1024x1024"
)

// rate limiter for OpenAI API calls (50 requests/second with burst capacity of 10)
var openaiRateLimiter = rate.NewLimiter(50, 10)

type openaiChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float32        `json:"temperature,omitempty"`
}

// content is either a plain string or a list of parts for vision requests
type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openaiPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openaiImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type openaiImageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url"`
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

type OpenAIConfig struct {
	APIKey     string
	Model      string // default chat model, e.g. "gpt-3.5-turbo"
	BaseURL    string
	HTTPClient *http.Client
}

// talks to the chat completions and image generation endpoints
type OpenAIClient struct {
	config     OpenAIConfig
	httpClient *http.Client
}

func NewOpenAIClient(config OpenAIConfig) *OpenAIClient {
	if config.Model == "" {
		config.Model = defaultOpenAIModel
	}

	if config.BaseURL == "" {
		config.BaseURL = openaiBaseURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient(defaultTimeout)
	}

	return &OpenAIClient{
		config:     config,
		httpClient: httpClient,
	}
}

func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	messages := make([]openaiMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openaiMessage{Role: "system", Content: req.System})
	}

	for _, msg := range req.Messages {
		messages = append(messages, toOpenAIMessage(msg))
	}

	body := openaiChatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}

	if req.Temperature > 0 {
		temp := req.Temperature
		body.Temperature = &temp
	}

	var apiResp openaiChatResponse
	if err := postJSON(ctx, c.httpClient, openaiRateLimiter, ProviderOpenAI,
		c.config.BaseURL+"/chat/completions", c.headers(), body, &apiResp); err != nil {
		return nil, err
	}

	resp := &ChatResponse{
		Provider: ProviderOpenAI,
		Model:    apiResp.Model,
		Choices:  make([]Choice, 0, len(apiResp.Choices)),
		Usage: Usage{
			InputTokens:  apiResp.Usage.PromptTokens,
			OutputTokens: apiResp.Usage.CompletionTokens,
		},
	}

	for _, choice := range apiResp.Choices {
		resp.Choices = append(resp.Choices, Choice{
			Message:      Message{Role: choice.Message.Role, Content: choice.Message.Content},
			FinishReason: choice.FinishReason,
		})
	}

	return resp, nil
}

func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("image prompt is required")
	}

	body := openaiImageRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		N:      req.N,
		Size:   req.Size,
	}

	if body.Model == "" {
		body.Model = defaultOpenAIImage
	}

	if body.N <= 0 {
		body.N = 1
	}

	if body.Size == "" {
		body.Size = defaultOpenAIImageSz
	}

	var apiResp openaiImageResponse
	if err := postJSON(ctx, c.httpClient, openaiRateLimiter, ProviderOpenAI,
		c.config.BaseURL+"/images/generations", c.headers(), body, &apiResp); err != nil {
		return nil, err
	}

	resp := &ImageResponse{
		Provider: ProviderOpenAI,
		Data:     make([]GeneratedImage, 0, len(apiResp.Data)),
	}

	for _, d := range apiResp.Data {
		resp.Data = append(resp.Data, GeneratedImage{
			URL:           d.URL,
			B64JSON:       d.B64JSON,
			RevisedPrompt: d.RevisedPrompt,
		})
	}

	return resp, nil
}

func (c *OpenAIClient) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.config.APIKey}
}

// plain text messages keep the string form, vision messages use content parts
func toOpenAIMessage(msg Message) openaiMessage {
	role := msg.Role
	if role == "" {
		role = "user"
	}

	if len(msg.Images) == 0 {
		return openaiMessage{Role: role, Content: msg.Content}
	}

	parts := make([]openaiPart, 0, len(msg.Images)+1)
	if msg.Content != "" {
		parts = append(parts, openaiPart{Type: "text", Text: msg.Content})
	}

	for _, img := range msg.Images {
		url := img.URL
		if len(img.Data) > 0 {
			url = dataURL(img)
		}

		parts = append(parts, openaiPart{Type: "image_url", ImageURL: &openaiImageURL{URL: url}})
	}

	return openaiMessage{Role: role, Content: parts}
}

package llm

import (
	"context"
	"fmt"
)

// represents different LLM providers
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// completes chat style requests, optionally with image parts
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Provider() Provider
}

// generates images from a text prompt
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// an image attached to a chat message, by URL or inline bytes
type Image struct {
	URL       string
	MediaType string // e.g. "image/png"
	Data      []byte
}

type Message struct {
	Role    string // "user" or "assistant"
	Content string
	Images  []Image
}

type ChatRequest struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

type Choice struct {
	Message      Message
	FinishReason string
}

// provider-neutral completion result, choices in provider order
type ChatResponse struct {
	Provider Provider
	Model    string
	Choices  []Choice
	Usage    Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type ImageRequest struct {
	Model  string
	Prompt string
	N      int
	Size   string // e.g. "1024x1024"
}

type GeneratedImage struct {
	URL           string
	B64JSON       string
	RevisedPrompt string
}

type ImageResponse struct {
	Provider Provider
	Data     []GeneratedImage
}

// non-2xx answer from a provider API
type APIError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

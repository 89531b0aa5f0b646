// Package llmtest provides in-memory provider fakes for tests.
package llmtest

import (
	"context"
	"sync"

	"codeberg.org/boomline/server/internal/llm"
)

// Chat answers every completion with Content, or fails with Err
type Chat struct {
	mu sync.Mutex

	Name    llm.Provider
	Content string
	Err     error

	Requests []llm.ChatRequest
}

func (f *Chat) Complete(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)

	if f.Err != nil {
		return nil, f.Err
	}

	return &llm.ChatResponse{
		Provider: f.Provider(),
		Choices:  []llm.Choice{{Message: llm.Message{Role: "assistant", Content: f.Content}, FinishReason: "stop"}},
	}, nil
}

func (f *Chat) Provider() llm.Provider {
	if f.Name == "" {
		return llm.ProviderOpenAI
	}

	return f.Name
}

func (f *Chat) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.Requests)
}

// the most recent request, zero when none was made
func (f *Chat) Last() llm.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.Requests) == 0 {
		return llm.ChatRequest{}
	}

	return f.Requests[len(f.Requests)-1]
}

// Images answers every generation with URL, or fails with Err
type Images struct {
	mu sync.Mutex

	URL string
	Err error

	Requests []llm.ImageRequest
}

func (f *Images) GenerateImage(_ context.Context, req llm.ImageRequest) (*llm.ImageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Requests = append(f.Requests, req)

	if f.Err != nil {
		return nil, f.Err
	}

	resp := &llm.ImageResponse{Provider: llm.ProviderOpenAI}
	if f.URL != "" {
		resp.Data = []llm.GeneratedImage{{URL: f.URL}}
	}

	return resp, nil
}

func (f *Images) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.Requests)
}

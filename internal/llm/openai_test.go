package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete_TextMessage(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"gpt-3.5-turbo","choices":[{"index":0,"message":{"role":"assistant","content":"Soap that sells itself"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":5}}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: server.URL, HTTPClient: server.Client()})

	resp, err := client.Complete(context.Background(), ChatRequest{
		Model:     "gpt-3.5-turbo",
		MaxTokens: 120,
		Messages:  []Message{{Role: "user", Content: "Write a catchy Instagram caption for this topic: soap"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-3.5-turbo", got["model"])
	assert.Equal(t, float64(120), got["max_tokens"])
	_, hasTemp := got["temperature"]
	assert.False(t, hasTemp)

	messages := got["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "Write a catchy Instagram caption for this topic: soap", messages[0].(map[string]any)["content"])

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "Soap that sells itself", resp.Choices[0].Message.Content)
	assert.Equal(t, ProviderOpenAI, resp.Provider)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 5, resp.Usage.OutputTokens)
}

func TestOpenAIComplete_VisionParts(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string            `json:"role"`
			Content []json.RawMessage `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"caption"}}]}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := client.Complete(context.Background(), ChatRequest{
		Model: "gpt-4-turbo",
		Messages: []Message{{
			Role:    "user",
			Content: "describe",
			Images: []Image{
				{URL: "https://cdn.example.com/cat.png"},
				{MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
			},
		}},
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 3)

	var text, remote, inline openaiPart
	require.NoError(t, json.Unmarshal(got.Messages[0].Content[0], &text))
	require.NoError(t, json.Unmarshal(got.Messages[0].Content[1], &remote))
	require.NoError(t, json.Unmarshal(got.Messages[0].Content[2], &inline))

	assert.Equal(t, "text", text.Type)
	assert.Equal(t, "describe", text.Text)
	assert.Equal(t, "image_url", remote.Type)
	assert.Equal(t, "https://cdn.example.com/cat.png", remote.ImageURL.URL)
	assert.Equal(t, "data:image/png;base64,iVBORw==", inline.ImageURL.URL)
}

func TestOpenAIComplete_SystemPromptComesFirst(t *testing.T) {
	var got openaiChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[]}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, HTTPClient: server.Client()})

	resp, err := client.Complete(context.Background(), ChatRequest{
		System:   "be brief",
		Messages: []Message{{Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Choices)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, defaultOpenAIModel, got.Model)
}

func TestOpenAIComplete_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := client.Complete(context.Background(), ChatRequest{Messages: []Message{{Content: "hi"}}})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, ProviderOpenAI, apiErr.Provider)
	assert.Contains(t, apiErr.Body, "rate limited")
}

func TestOpenAIGenerateImage(t *testing.T) {
	var got openaiImageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"created":1,"data":[{"url":"https://images.example.com/bike.png","revised_prompt":"a red bicycle"}]}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, HTTPClient: server.Client()})

	resp, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a red bicycle on a beach"})
	require.NoError(t, err)

	assert.Equal(t, "dall-e-3", got.Model)
	assert.Equal(t, 1, got.N)
	assert.Equal(t, "1024x1024", got.Size)
	assert.Equal(t, "a red bicycle on a beach", got.Prompt)

	require.Len(t, resp.Data, 1)
	assert.Equal(t, "https://images.example.com/bike.png", resp.Data[0].URL)
}

func TestOpenAIGenerateImage_EmptyPrompt(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "  "})
	assert.Error(t, err)
}

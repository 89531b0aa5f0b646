package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/boomline/server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "desk-1", r.Header.Get("X-Client-ID"))

		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, generateRequest{Prompt: "launch", ContentType: "Twitter Post"}, req)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"text","result":"We're live!","remaining":3}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "desk-1").Generate(context.Background(), "Twitter Post", "launch")
	require.NoError(t, err)
	assert.Equal(t, "We're live!", resp.Result)
	assert.Equal(t, 3, resp.Remaining)
}

func TestClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"quota_exceeded","message":"daily quota of 5 generations reached","upgrade_url":"https://upgrade.example.com"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Translate(context.Background(), "hi", "es")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, errors.CodeQuotaExceeded, apiErr.Code)
	assert.Contains(t, formatError(err, ""), "https://upgrade.example.com")
}

func TestClient_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Generate(context.Background(), "x", "y")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "502")
}

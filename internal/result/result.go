package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/boomline/server/internal/llm"
)

// which branch of Result is populated
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindError Kind = "error"
)

// ErrNoContent is the message for an empty upstream answer.
const ErrNoContent = "no content returned"

// Result is the outcome of one generation: text, an image URL, or an error.
type Result struct {
	Kind       Kind   `json:"kind"`
	Value      string `json:"value,omitempty"`
	URL        string `json:"url,omitempty"`
	Message    string `json:"message,omitempty"`
	HTTPStatus int    `json:"httpStatus,omitempty"`
}

func Text(value string) Result {
	return Result{Kind: KindText, Value: value}
}

func Image(url string) Result {
	return Result{Kind: KindImage, URL: url}
}

func Failure(message string, status int) Result {
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}

	return Result{Kind: KindError, Message: message, HTTPStatus: status}
}

func (r Result) IsError() bool {
	return r.Kind == KindError
}

// the text or URL a user sees, empty for errors
func (r Result) Output() string {
	switch r.Kind {
	case KindText:
		return r.Value
	case KindImage:
		return r.URL
	default:
		return ""
	}
}

// normalizes a chat completion, the first choice carries the answer
func FromChat(resp *llm.ChatResponse, err error) Result {
	if err != nil {
		return fromError(err)
	}

	if resp == nil || len(resp.Choices) == 0 {
		return Failure(ErrNoContent, http.StatusInternalServerError)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Failure(ErrNoContent, http.StatusInternalServerError)
	}

	return Text(text)
}

// normalizes an image generation, the first image carries the answer
func FromImage(resp *llm.ImageResponse, err error) Result {
	if err != nil {
		return fromError(err)
	}

	if resp == nil || len(resp.Data) == 0 {
		return Failure(ErrNoContent, http.StatusInternalServerError)
	}

	first := resp.Data[0]

	if url := strings.TrimSpace(first.URL); url != "" {
		return Image(url)
	}

	// some models only answer with base64 payloads
	if b64 := strings.TrimSpace(first.B64JSON); b64 != "" {
		return Image("data:image/png;base64," + b64)
	}

	return Failure(ErrNoContent, http.StatusInternalServerError)
}

func fromError(err error) Result {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		return Failure(providerMessage(apiErr), apiErr.StatusCode)
	}

	// transport failures carry no status
	return Failure(err.Error(), http.StatusInternalServerError)
}

// pulls error.message out of a provider error body when there is one
func providerMessage(apiErr *llm.APIError) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if json.Unmarshal([]byte(apiErr.Body), &body) == nil && body.Error.Message != "" {
		return body.Error.Message
	}

	return fmt.Sprintf("upstream request failed with status %d", apiErr.StatusCode)
}

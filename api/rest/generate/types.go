package generate

import (
	"strings"

	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/result"
)

// Request represents the request body for content generation
type Request struct {
	Prompt      string `json:"prompt"`
	ContentType string `json:"contentType"`
	Type        string `json:"type"` // older clients send the tag as "type"
	ImageURL    string `json:"imageUrl"`
	Base64      string `json:"base64"`
}

func (r Request) contentType() string {
	if tag := strings.TrimSpace(r.ContentType); tag != "" {
		return tag
	}

	return strings.TrimSpace(r.Type)
}

func (r Request) hasImage() bool {
	return strings.TrimSpace(r.ImageURL) != "" || strings.TrimSpace(r.Base64) != ""
}

// Response represents a successful generation
type Response struct {
	Kind      result.Kind `json:"kind"`
	Result    string      `json:"result,omitempty"`
	ImageURL  string      `json:"imageUrl,omitempty"`
	EntryID   string      `json:"entryId,omitempty"`
	Remaining int         `json:"remaining"`
	Limit     int         `json:"limit"`
	Warning   string      `json:"warning,omitempty"`
}

type ContentTypesResponse struct {
	ContentTypes []content.Entry `json:"content_types"`
}

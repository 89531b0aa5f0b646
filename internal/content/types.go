package content

import (
	"encoding/base64"
	"fmt"

	"codeberg.org/boomline/server/internal/llm"
)

// groups content types by the upstream call shape they need
type Family string

const (
	FamilyText        Family = "text"
	FamilyImage       Family = "image"
	FamilyHashtags    Family = "hashtags"
	FamilyCaption     Family = "caption"
	FamilyPassthrough Family = "passthrough"
)

// Spec is one content type. The set of implementations is closed; Build
// switches over all of them.
type Spec interface {
	Tag() string
	Family() Family
	isSpec()
}

// wraps the prompt in a natural-language instruction template
type TextInstruction struct {
	tag      string
	template string // fmt template with a single %s for the prompt
}

func (s TextInstruction) Tag() string      { return s.tag }
func (s TextInstruction) Family() Family   { return FamilyText }
func (s TextInstruction) isSpec()          {}
func (s TextInstruction) Template() string { return s.template }

// sends the prompt unmodified to the image generation endpoint
type ImageGeneration struct {
	tag string
}

func (s ImageGeneration) Tag() string    { return s.tag }
func (s ImageGeneration) Family() Family { return FamilyImage }
func (s ImageGeneration) isSpec()        {}

// asks for a fixed number of comma separated tags
type HashtagList struct {
	tag   string
	count int
}

func (s HashtagList) Tag() string    { return s.tag }
func (s HashtagList) Family() Family { return FamilyHashtags }
func (s HashtagList) isSpec()        {}
func (s HashtagList) Count() int     { return s.count }

// captions an attached image with the vision model
type ImageCaption struct {
	tag string
}

func (s ImageCaption) Tag() string    { return s.tag }
func (s ImageCaption) Family() Family { return FamilyCaption }
func (s ImageCaption) isSpec()        {}

// any tag we do not know; the prompt goes out as-is
type Passthrough struct {
	tag string
}

func (s Passthrough) Tag() string    { return s.tag }
func (s Passthrough) Family() Family { return FamilyPassthrough }
func (s Passthrough) isSpec()        {}

// ImageRef points at the image to caption, either a fetchable URL or
// inline bytes decoded from a data URL.
type ImageRef struct {
	URL       string
	MediaType string
	Data      []byte
}

func (r ImageRef) IsInline() bool {
	return len(r.Data) > 0
}

// re-encodes inline bytes as a data URL
func (r ImageRef) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", r.MediaType, base64.StdEncoding.EncodeToString(r.Data))
}

// short description for logs and history, never the raw bytes
func (r ImageRef) Location() string {
	if r.IsInline() {
		return fmt.Sprintf("inline %s (%d bytes)", r.MediaType, len(r.Data))
	}

	return r.URL
}

func (r ImageRef) toLLM() llm.Image {
	return llm.Image{URL: r.URL, MediaType: r.MediaType, Data: r.Data}
}

// GenerationRequest is what the caller asks for.
type Request struct {
	ContentType string
	Prompt      string
	Image       *ImageRef
}

// the exact provider call for a request, exactly one of Chat or Image is set
type UpstreamRequest struct {
	Spec  Spec
	Chat  *llm.ChatRequest
	Image *llm.ImageRequest
}

func (u *UpstreamRequest) Family() Family {
	return u.Spec.Family()
}

// the instruction text sent upstream
func (u *UpstreamRequest) Instruction() string {
	if u.Image != nil {
		return u.Image.Prompt
	}

	if u.Chat == nil || len(u.Chat.Messages) == 0 {
		return ""
	}

	return u.Chat.Messages[len(u.Chat.Messages)-1].Content
}

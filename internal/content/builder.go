package content

import (
	"fmt"
	"strings"

	"codeberg.org/boomline/server/internal/config"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/llm"
)

const (
	defaultTextModel   = "gpt-3.5-turbo"
	defaultVisionModel = "gpt-4-turbo"
	defaultImageModel  = "dall-e-3"
	defaultImageSize   = "1024x1024"
	defaultTextTokens  = 1024
	defaultTagTokens   = 120
)

type Options struct {
	TextModel     string
	VisionModel   string
	ImageModel    string
	ImageSize     string
	TextMaxTokens int
	TagMaxTokens  int
}

// fills unset options with the product defaults
func (o Options) withDefaults() Options {
	if o.TextModel == "" {
		o.TextModel = defaultTextModel
	}

	if o.VisionModel == "" {
		o.VisionModel = defaultVisionModel
	}

	if o.ImageModel == "" {
		o.ImageModel = defaultImageModel
	}

	if o.ImageSize == "" {
		o.ImageSize = defaultImageSize
	}

	if o.TextMaxTokens <= 0 {
		o.TextMaxTokens = defaultTextTokens
	}

	if o.TagMaxTokens <= 0 {
		o.TagMaxTokens = defaultTagTokens
	}

	return o
}

// reads builder options from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TextModel:     cfg.TextModel,
		VisionModel:   cfg.VisionModel,
		ImageModel:    cfg.ImageModel,
		ImageSize:     cfg.ImageSize,
		TextMaxTokens: cfg.TextMaxTokens,
		TagMaxTokens:  cfg.TagMaxTokens,
	}.withDefaults()
}

// turns (content type, prompt, image) into the provider request
type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts.withDefaults()}
}

func (b *Builder) Build(req Request) (*UpstreamRequest, error) {
	// the prompt is sent verbatim, blank prompts count as missing
	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = ""
	}

	hasImage := req.Image != nil && (req.Image.URL != "" || req.Image.IsInline())

	if prompt == "" && !hasImage {
		return nil, errors.Invalid("prompt", "prompt or image is required")
	}

	spec := Lookup(req.ContentType)

	switch s := spec.(type) {
	case ImageGeneration:
		if hasImage {
			return nil, errors.Invalid("image", s.Tag()+" does not take an image")
		}

		if prompt == "" {
			return nil, errors.Invalid("prompt", "prompt is required for "+s.Tag())
		}

		return &UpstreamRequest{
			Spec: s,
			Image: &llm.ImageRequest{
				Model:  b.opts.ImageModel,
				Prompt: prompt,
				N:      1,
				Size:   b.opts.ImageSize,
			},
		}, nil

	case ImageCaption:
		if !hasImage {
			return nil, errors.Invalid("image", "an image is required for "+s.Tag())
		}

		return b.vision(s, captionPrompt(prompt), *req.Image), nil

	case HashtagList:
		instruction := hashtagInstruction(s.Count(), prompt)
		if hasImage {
			if prompt == "" {
				instruction = hashtagImageInstruction(s.Count())
			}

			return b.visionWithTokens(s, instruction, *req.Image, b.opts.TagMaxTokens), nil
		}

		return b.chat(s, instruction, b.opts.TagMaxTokens), nil

	case TextInstruction:
		instruction := captionInstruction
		if prompt != "" {
			instruction = fmt.Sprintf(s.Template(), prompt)
		}

		if hasImage {
			return b.vision(s, instruction, *req.Image), nil
		}

		return b.chat(s, instruction, b.opts.TextMaxTokens), nil

	case Passthrough:
		instruction := prompt
		if instruction == "" {
			instruction = captionInstruction
		}

		if hasImage {
			return b.vision(s, instruction, *req.Image), nil
		}

		return b.chat(s, instruction, b.opts.TextMaxTokens), nil

	default:
		return nil, fmt.Errorf("unhandled content type %T", spec)
	}
}

func (b *Builder) chat(spec Spec, instruction string, maxTokens int) *UpstreamRequest {
	return &UpstreamRequest{
		Spec: spec,
		Chat: &llm.ChatRequest{
			Model:     b.opts.TextModel,
			MaxTokens: maxTokens,
			Messages:  []llm.Message{{Role: "user", Content: instruction}},
		},
	}
}

func (b *Builder) vision(spec Spec, instruction string, image ImageRef) *UpstreamRequest {
	return b.visionWithTokens(spec, instruction, image, b.opts.TextMaxTokens)
}

func (b *Builder) visionWithTokens(spec Spec, instruction string, image ImageRef, maxTokens int) *UpstreamRequest {
	return &UpstreamRequest{
		Spec: spec,
		Chat: &llm.ChatRequest{
			Model:     b.opts.VisionModel,
			MaxTokens: maxTokens,
			Messages: []llm.Message{{
				Role:    "user",
				Content: instruction,
				Images:  []llm.Image{image.toLLM()},
			}},
		},
	}
}

// the fixed caption instruction, with any user hint appended
func captionPrompt(hint string) string {
	if hint == "" {
		return captionInstruction
	}

	return captionInstruction + " Context from the user: " + hint
}

func hashtagInstruction(count int, prompt string) string {
	return fmt.Sprintf("Generate exactly %d viral hashtags for: %s. "+
		"Return only the %d hashtags, separated by commas.", count, prompt, count)
}

func hashtagImageInstruction(count int) string {
	return fmt.Sprintf("Generate exactly %d viral hashtags for this image. "+
		"Return only the %d hashtags, separated by commas.", count, count)
}

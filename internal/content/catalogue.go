package content

import "strings"

const (
	TagGenerateImage = "Generate Image"
	TagViralTag      = "#ViralTag"
	TagImageCaption  = "Image Caption from Upload"

	defaultHashtagCount = 10
)

const captionInstruction = "You are an AI caption writer. Generate a short, fun, engaging caption for the image " +
	"that could go viral on Instagram or Twitter. Do not explain, only return the caption."

// known content types in display order
var catalogue = []Spec{
	TextInstruction{tag: "Instagram Caption", template: "Write a catchy Instagram caption for this topic: %s"},
	TextInstruction{tag: "Product Description", template: "Write a compelling product description for: %s"},
	TextInstruction{tag: "LinkedIn Post", template: "Write a professional LinkedIn post about: %s"},
	TextInstruction{tag: "YouTube Video Description", template: "Write a detailed YouTube video description for: %s"},
	TextInstruction{tag: "TikTok Hook", template: "Write a viral TikTok hook for: %s"},
	TextInstruction{tag: "Hashtag Generator", template: "Generate trending hashtags for: %s"},
	TextInstruction{tag: "Facebook Post", template: "Write an engaging Facebook post about: %s"},
	TextInstruction{tag: "Twitter Post", template: "Write a short and catchy Twitter post for: %s"},
	TextInstruction{tag: "WhatsApp Message", template: "Write a creative WhatsApp message for: %s"},
	TextInstruction{tag: "Reddit Post", template: "Write a Reddit post for: %s"},
	TextInstruction{tag: "Pinterest Pin Description", template: "Write a Pinterest pin description for: %s"},
	HashtagList{tag: TagViralTag, count: defaultHashtagCount},
	ImageGeneration{tag: TagGenerateImage},
	ImageCaption{tag: TagImageCaption},
}

var byTag = func() map[string]Spec {
	m := make(map[string]Spec, len(catalogue))
	for _, s := range catalogue {
		m[strings.ToLower(s.Tag())] = s
	}

	return m
}()

// returns the content type for a tag; unknown tags pass through
func Lookup(tag string) Spec {
	tag = strings.TrimSpace(tag)

	if s, ok := byTag[strings.ToLower(tag)]; ok {
		return s
	}

	return Passthrough{tag: tag}
}

// reports whether the tag names a known content type
func Known(tag string) bool {
	_, ok := byTag[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

type Entry struct {
	Tag    string `json:"tag"`
	Family Family `json:"family"`
}

// lists the known content types
func Catalogue() []Entry {
	entries := make([]Entry, 0, len(catalogue))
	for _, s := range catalogue {
		entries = append(entries, Entry{Tag: s.Tag(), Family: s.Family()})
	}

	return entries
}

package translate

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/llm"
	"codeberg.org/boomline/server/internal/result"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const defaultModel = "gpt-3.5-turbo"

type Translation struct {
	Text     string `json:"translated"`
	Language string `json:"language"`
	Skipped  bool   `json:"skipped"`
}

// TranslationError is a failed or empty translation; the original text is never returned in its place.
type TranslationError struct {
	Err error
}

func (e *TranslationError) Error() string {
	return "translation failed: " + e.Err.Error()
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

func (e *TranslationError) ErrorCode() string {
	return errors.CodeTranslateFailed
}

type Options struct {
	Model           string
	DefaultLanguage string
}

// relays translation requests to a chat model
type Relay struct {
	client   llm.ChatCompleter
	model    string
	fallback language.Tag
}

func NewRelay(client llm.ChatCompleter, opts Options) *Relay {
	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	fallback, err := language.Parse(opts.DefaultLanguage)
	if err != nil {
		fallback = language.English
	}

	return &Relay{client: client, model: model, fallback: fallback}
}

// the language generated content is written in
func (r *Relay) DefaultLanguage() string {
	return r.fallback.String()
}

// translates text into the target, which may be a BCP 47 tag or an English language name
func (r *Relay) Translate(ctx context.Context, text, target string) (*Translation, error) {
	text = strings.TrimSpace(text)
	target = strings.TrimSpace(target)

	if text == "" {
		return nil, errors.Invalid("text", "text is required")
	}

	if target == "" {
		return nil, errors.Invalid("targetLanguage", "target language is required")
	}

	name, tag, ok := resolve(target)

	if sameLanguage(name, tag, ok, r.fallback) {
		return &Translation{Text: text, Language: name, Skipped: true}, nil
	}

	resp, err := r.client.Complete(ctx, llm.ChatRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: "user", Content: fmt.Sprintf("Translate the following into %s: %s", name, text)},
		},
	})

	res := result.FromChat(resp, err)
	if res.IsError() {
		return nil, &TranslationError{Err: &errors.UpstreamError{
			Op:       "translate",
			Provider: string(r.client.Provider()),
			Status:   res.HTTPStatus,
			Message:  res.Message,
			Err:      err,
		}}
	}

	return &Translation{Text: res.Value, Language: name}, nil
}

func sameLanguage(name string, tag language.Tag, parsed bool, want language.Tag) bool {
	if parsed {
		base, _ := tag.Base()
		wantBase, _ := want.Base()

		return base == wantBase
	}

	return strings.EqualFold(name, languageName(want))
}

// reports whether translating into target would be a no-op for content written in lang
func Matches(target, lang string) bool {
	want, err := language.Parse(lang)
	if err != nil {
		want = language.English
	}

	name, tag, ok := resolve(strings.TrimSpace(target))

	return sameLanguage(name, tag, ok, want)
}

// turns a tag like "es" or "pt-BR" into its English name; anything else is used as written
func resolve(target string) (string, language.Tag, bool) {
	tag, err := language.Parse(strings.ReplaceAll(target, "_", "-"))
	if err != nil || tag == language.Und {
		return target, language.Und, false
	}

	name := languageName(tag)
	if name == "" {
		return target, language.Und, false
	}

	return name, tag, true
}

func languageName(tag language.Tag) string {
	return display.English.Languages().Name(tag)
}

package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/export"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/result"
	"codeberg.org/boomline/server/internal/share"
	"codeberg.org/boomline/server/internal/translate"
)

// the only owner in a client-local ledger
const localOwner = "local"

// Session keeps the client-side state: the chosen content type, the last
// result, and a local ledger of history and usage
type Session struct {
	api         API
	ledger      *ledger.Ledger
	contentType string
	language    string
	last        *result.Result
}

// what one prompt produced
type Outcome struct {
	Result  result.Result
	Quota   ledger.Quota
	Warning string
}

func NewSession(api API, l *ledger.Ledger, contentType, language string) *Session {
	if strings.TrimSpace(contentType) == "" {
		contentType = content.Catalogue()[0].Tag
	}

	return &Session{api: api, ledger: l, contentType: contentType, language: language}
}

func (s *Session) ContentType() string {
	return s.contentType
}

func (s *Session) SetContentType(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return errors.Invalid("contentType", "content type is required")
	}

	// match the catalogue spelling when the tag is known
	for _, entry := range content.Catalogue() {
		if strings.EqualFold(entry.Tag, tag) {
			tag = entry.Tag
			break
		}
	}

	s.contentType = tag

	return nil
}

// the text of the last result, or its image URL
func (s *Session) Last() string {
	if s.last == nil {
		return ""
	}

	return s.last.Output()
}

// refuses locally once the daily quota is gone, otherwise asks the server and records the result
func (s *Session) Generate(ctx context.Context, prompt string) (*Outcome, error) {
	before, err := s.ledger.Require(ctx, localOwner)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.Generate(ctx, s.contentType, prompt)
	if err != nil {
		return nil, err
	}

	res := result.Text(resp.Result)
	if resp.Kind == string(result.KindImage) {
		res = result.Image(resp.ImageURL)
	}

	if res.Output() == "" {
		return nil, fmt.Errorf("server returned an empty %s result", resp.Kind)
	}

	out := &Outcome{Result: res, Warning: resp.Warning}

	quota, err := s.ledger.RecordAndCheckQuota(ctx, localOwner, ledger.Entry{
		ContentType: s.contentType,
		Prompt:      prompt,
		Result:      res,
	})
	if err != nil {
		out.Warning = "result could not be saved to local history"
		quota = before
	}

	out.Quota = quota
	s.last = &res

	return out, nil
}

// translates the last text result; the default language never leaves the machine
func (s *Session) Translate(ctx context.Context, language string) (*TranslateResponse, error) {
	if s.last == nil || s.last.Kind != result.KindText {
		return nil, errors.Invalid("text", "nothing to translate yet")
	}

	if strings.TrimSpace(language) == "" {
		return nil, errors.Invalid("targetLanguage", "usage: /translate <language>")
	}

	if translate.Matches(language, s.language) {
		return &TranslateResponse{Translated: s.last.Value, Language: language, Skipped: true}, nil
	}

	return s.api.Translate(ctx, s.last.Value, language)
}

// share links for the last result, all platforms when platform is empty
func (s *Session) Share(platform string) (map[string]string, error) {
	text := s.Last()

	if platform != "" {
		link, err := share.Link(platform, text)
		if err != nil {
			return nil, err
		}

		return map[string]string{strings.ToLower(platform): link}, nil
	}

	return share.Links(text)
}

func (s *Session) History(ctx context.Context) ([]ledger.Entry, error) {
	return s.ledger.History(ctx, localOwner, 0)
}

func (s *Session) Usage(ctx context.Context) (ledger.Quota, error) {
	return s.ledger.CheckQuota(ctx, localOwner)
}

func (s *Session) UpgradeURL() string {
	return s.ledger.UpgradeURL()
}

// clears local history, usage is kept
func (s *Session) Clear(ctx context.Context) (int, error) {
	s.last = nil
	return s.ledger.Clear(ctx, localOwner)
}

// writes local history as a PDF
func (s *Session) Export(ctx context.Context, w io.Writer) error {
	entries, err := s.History(ctx)
	if err != nil {
		return err
	}

	return export.WritePDF(w, entries)
}

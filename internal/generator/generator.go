package generator

import (
	"context"
	"strings"

	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/llm"
	"codeberg.org/boomline/server/internal/logger"
	"codeberg.org/boomline/server/internal/media"
	"codeberg.org/boomline/server/internal/mirror"
	"codeberg.org/boomline/server/internal/result"
)

// reports whether an account has an active paid subscription
type PremiumChecker interface {
	IsPremium(ctx context.Context, email string) bool
}

type Request struct {
	Owner string
	Email string

	ContentType string
	Prompt      string
	Image       *content.ImageRef
}

type Output struct {
	Result  result.Result
	Quota   ledger.Quota
	Entry   *ledger.Entry
	Premium bool

	// set when the result is fine but could not be stored
	Warning string
}

type Config struct {
	Builder *content.Builder
	Text    llm.ChatCompleter
	Vision  llm.ChatCompleter
	Images  llm.ImageGenerator
	Ledger  *ledger.Ledger
	Mirror  mirror.Mirror
	Premium PremiumChecker

	// appended to caption results when set
	PromoHashtags []string
}

// runs one generation: quota, build, upstream call, normalize, record
type Generator struct {
	builder *content.Builder
	text    llm.ChatCompleter
	vision  llm.ChatCompleter
	images  llm.ImageGenerator
	ledger  *ledger.Ledger
	mirror  mirror.Mirror
	premium PremiumChecker
	promo   string
}

func New(cfg Config) *Generator {
	m := cfg.Mirror
	if m == nil {
		m = mirror.Nop{}
	}

	vision := cfg.Vision
	if vision == nil {
		vision = cfg.Text
	}

	return &Generator{
		builder: cfg.Builder,
		text:    cfg.Text,
		vision:  vision,
		images:  cfg.Images,
		ledger:  cfg.Ledger,
		mirror:  m,
		premium: cfg.Premium,
		promo:   strings.Join(cfg.PromoHashtags, " "),
	}
}

func (g *Generator) Ledger() *ledger.Ledger {
	return g.ledger
}

func (g *Generator) isPremium(ctx context.Context, email string) bool {
	return g.premium != nil && email != "" && g.premium.IsPremium(ctx, email)
}

// the caller's quota state, unlimited for premium accounts
func (g *Generator) Quota(ctx context.Context, owner, email string) (ledger.Quota, bool, error) {
	quota, err := g.ledger.CheckQuota(ctx, owner)
	if err != nil {
		return quota, false, err
	}

	if g.isPremium(ctx, email) {
		return ledger.Quota{Allowed: true, Remaining: -1, Count: quota.Count, Date: quota.Date}, true, nil
	}

	return quota, false, nil
}

func (g *Generator) Generate(ctx context.Context, req Request) (*Output, error) {
	premium := g.isPremium(ctx, req.Email)

	// nothing goes upstream once the quota is used up
	var before ledger.Quota
	if !premium {
		var err error
		if before, err = g.ledger.Require(ctx, req.Owner); err != nil {
			return nil, err
		}
	}

	upstream, err := g.builder.Build(content.Request{
		ContentType: req.ContentType,
		Prompt:      req.Prompt,
		Image:       req.Image,
	})
	if err != nil {
		return nil, err
	}

	res, provider := g.call(ctx, upstream)
	if res.IsError() {
		return nil, g.failure(upstream, provider, res)
	}

	if upstream.Family() == content.FamilyCaption && res.Kind == result.KindText && g.promo != "" {
		res = result.Text(res.Value + " " + g.promo)
	}

	out := &Output{Result: res, Premium: premium}

	entry := ledger.Entry{ContentType: upstream.Spec.Tag(), Prompt: historyPrompt(req), Result: res}

	stored, quota, err := g.ledger.Record(ctx, req.Owner, entry)
	if err != nil {
		logger.WarnErr(err, "failed to record generation", "owner", req.Owner, "content_type", entry.ContentType)

		out.Warning = "result was generated but could not be saved to history"
		quota = spent(before)
	} else {
		out.Entry = &stored
	}

	if premium {
		quota = ledger.Quota{Allowed: true, Remaining: -1, Count: quota.Count, Date: quota.Date}
	}

	out.Quota = quota

	if out.Warning == "" {
		g.mirrorEntry(ctx, req.Owner, out)
	}

	return out, nil
}

// best effort; the local commit already happened
func (g *Generator) mirrorEntry(ctx context.Context, owner string, out *Output) {
	if out.Entry == nil {
		return
	}

	if err := g.mirror.Add(ctx, owner, *out.Entry); err != nil {
		logger.WarnErr(err, "failed to mirror history entry", "owner", owner)
		out.Warning = "result was saved locally but not to the hosted history"
	}
}

func (g *Generator) call(ctx context.Context, upstream *content.UpstreamRequest) (result.Result, llm.Provider) {
	if upstream.Image != nil {
		resp, err := g.images.GenerateImage(ctx, *upstream.Image)
		return result.FromImage(resp, err), llm.ProviderOpenAI
	}

	client := g.text
	if hasImages(upstream.Chat) {
		client = g.vision
	}

	resp, err := client.Complete(ctx, *upstream.Chat)

	return result.FromChat(resp, err), client.Provider()
}

func (g *Generator) failure(upstream *content.UpstreamRequest, provider llm.Provider, res result.Result) error {
	op := "generate"
	if upstream.Image != nil {
		op = "image-generate"
	}

	captioning := upstream.Family() == content.FamilyCaption || hasImages(upstream.Chat)
	if captioning {
		op = "caption"
	}

	err := &errors.UpstreamError{
		Op:       op,
		Provider: string(provider),
		Status:   res.HTTPStatus,
		Message:  res.Message,
	}

	if captioning {
		return &media.CaptionError{Err: err}
	}

	return err
}

func hasImages(req *llm.ChatRequest) bool {
	if req == nil {
		return false
	}

	for _, m := range req.Messages {
		if len(m.Images) > 0 {
			return true
		}
	}

	return false
}

// the prompt as stored in history, images are described by location
func historyPrompt(req Request) string {
	prompt := strings.TrimSpace(req.Prompt)
	if req.Image == nil {
		return prompt
	}

	if prompt == "" {
		return req.Image.Location()
	}

	return prompt + " [" + req.Image.Location() + "]"
}

// quota after one more generation, used when the commit failed
func spent(before ledger.Quota) ledger.Quota {
	if before.Limit <= 0 {
		return before
	}

	after := before
	after.Count = min(before.Count+1, before.Limit)
	after.Remaining = max(before.Remaining-1, 0)
	after.Allowed = after.Remaining > 0

	return after
}

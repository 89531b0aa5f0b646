package tui

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/result"
)

func formatOutcome(o *Outcome) string {
	var b strings.Builder

	switch o.Result.Kind {
	case result.KindImage:
		fmt.Fprintf(&b, "![generated image](%s)\n\n%s\n", o.Result.URL, o.Result.URL)
	default:
		b.WriteString(o.Result.Value)
		b.WriteString("\n")
	}

	if o.Warning != "" {
		fmt.Fprintf(&b, "\n> ⚠ %s\n", o.Warning)
	}

	return b.String()
}

func formatTranslation(resp *TranslateResponse) string {
	if resp.Skipped {
		return fmt.Sprintf("_already in %s, nothing to translate_\n\n%s\n", resp.Language, resp.Translated)
	}

	return fmt.Sprintf("**%s**\n\n%s\n", resp.Language, resp.Translated)
}

func formatHistory(entries []ledger.Entry) string {
	if len(entries) == 0 {
		return "_no history yet_"
	}

	var b strings.Builder

	b.WriteString("## History\n\n")

	for _, e := range entries {
		fmt.Fprintf(&b, "- **%s** (%s) %s\n", e.ContentType, e.CreatedAt.Local().Format("Jan 2 15:04"), oneLine(e.Result.Output()))
	}

	return b.String()
}

func formatUsage(q ledger.Quota, upgradeURL string) string {
	if q.Remaining < 0 {
		return fmt.Sprintf("%d generations today, no daily limit", q.Count)
	}

	s := fmt.Sprintf("%d of %d generations left today", q.Remaining, q.Limit)
	if !q.Allowed && upgradeURL != "" {
		s += fmt.Sprintf("\n\nupgrade for more: %s", upgradeURL)
	}

	return s
}

func formatShare(links map[string]string) string {
	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}

	sort.Strings(names)

	var b strings.Builder

	b.WriteString("## Share\n\n")

	for _, name := range names {
		fmt.Fprintf(&b, "- **%s**: %s\n", name, links[name])
	}

	return b.String()
}

func formatTypes(current string) string {
	var b strings.Builder

	b.WriteString("## Content types\n\n")

	for _, e := range content.Catalogue() {
		marker := ""
		if e.Tag == current {
			marker = " ← current"
		}

		fmt.Fprintf(&b, "- %s _(%s)_%s\n", e.Tag, e.Family, marker)
	}

	return b.String()
}

func formatHelp() string {
	var b strings.Builder

	b.WriteString("## Commands\n\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "- `%s` %s\n", c.Usage, c.Description)
	}

	b.WriteString("\nanything else is sent as a prompt for the current content type.\n")

	return b.String()
}

// explains a failure, pointing at the upgrade page when the quota ran out
func formatError(err error, upgradeURL string) string {
	var quota *errors.QuotaExceededError
	if stderrors.As(err, &quota) {
		link := quota.UpgradeURL
		if link == "" {
			link = upgradeURL
		}

		return fmt.Sprintf("**daily limit reached** (%d generations)\n\nupgrade for more: %s", quota.Limit, link)
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.Code == errors.CodeQuotaExceeded {
		link := apiErr.UpgradeURL
		if link == "" {
			link = upgradeURL
		}

		return fmt.Sprintf("**daily limit reached on the server**\n\nupgrade for more: %s", link)
	}

	return fmt.Sprintf("**error:** %v", err)
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")

	const limit = 80
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-1]) + "…"
	}

	return s
}

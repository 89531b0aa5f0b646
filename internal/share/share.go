package share

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"codeberg.org/boomline/server/internal/errors"
)

// share intent templates, %s is the encoded text
var templates = map[string]string{
	"facebook":  "https://www.facebook.com/sharer/sharer.php?u=%s",
	"twitter":   "https://twitter.com/intent/tweet?text=%s",
	"whatsapp":  "https://api.whatsapp.com/send?text=%s",
	"linkedin":  "https://www.linkedin.com/sharing/share-offsite/?url=%s",
	"reddit":    "https://reddit.com/submit?title=%s",
	"pinterest": "https://pinterest.com/pin/create/button/?description=%s",
}

// supported platform names, sorted
func Platforms() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// builds the share link for one platform
func Link(platform, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.Invalid("text", "text is required")
	}

	tmpl, ok := templates[strings.ToLower(strings.TrimSpace(platform))]
	if !ok {
		return "", errors.Invalid("platform", fmt.Sprintf("unsupported platform %q, supported: %s",
			platform, strings.Join(Platforms(), ", ")))
	}

	return fmt.Sprintf(tmpl, encode(text)), nil
}

// builds links for every platform
func Links(text string) (map[string]string, error) {
	links := make(map[string]string, len(templates))

	for _, name := range Platforms() {
		link, err := Link(name, text)
		if err != nil {
			return nil, err
		}

		links[name] = link
	}

	return links, nil
}

// percent-encodes like a URI component, spaces become %20
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

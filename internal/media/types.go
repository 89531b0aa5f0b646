package media

import (
	"net/http"

	"codeberg.org/boomline/server/internal/errors"
)

const defaultMaxBytes = 10 << 20

// media types by allow-list name
var knownTypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// media types by URL suffix, including images we never accept
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
	".heic": "image/heic",
}

type Options struct {
	// allow-list names, e.g. "jpeg", "png", "gif", "webp"
	AllowedTypes []string

	// issue a HEAD request for URLs without a recognizable suffix
	VerifyURLs bool

	MaxBytes   int64
	HTTPClient *http.Client

	// where uploads are staged, os.TempDir() when empty
	TempDir string
}

// where a caller's image comes from; exactly one field is set
type Source struct {
	URL    string
	Base64 string // data URL or bare base64
}

// CaptionError is a failed captioning call, distinct from a rejected image.
type CaptionError struct {
	Err error
}

func (e *CaptionError) Error() string {
	return "caption generation failed: " + e.Err.Error()
}

func (e *CaptionError) Unwrap() error {
	return e.Err
}

func (e *CaptionError) ErrorCode() string {
	return errors.CodeCaptionFailed
}

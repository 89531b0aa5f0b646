package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"codeberg.org/boomline/server/internal/blob"
	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"github.com/gabriel-vasile/mimetype"
)

// validates caller images and turns them into references the vision model can read
type Adapter struct {
	store      blob.Store
	allowed    map[string]bool
	verifyURLs bool
	maxBytes   int64
	httpClient *http.Client
	tempDir    string
}

func NewAdapter(store blob.Store, opts Options) *Adapter {
	allowed := make(map[string]bool)

	names := opts.AllowedTypes
	if len(names) == 0 {
		names = []string{"jpeg", "png"}
	}

	for _, name := range names {
		if mt, ok := knownTypes[strings.ToLower(strings.TrimSpace(name))]; ok {
			allowed[mt] = true
		}
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Adapter{
		store:      store,
		allowed:    allowed,
		verifyURLs: opts.VerifyURLs,
		maxBytes:   maxBytes,
		httpClient: httpClient,
		tempDir:    opts.TempDir,
	}
}

// reports whether a media type is on the allow-list
func (a *Adapter) Allowed(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}

	return a.allowed[strings.ToLower(mt)]
}

// the largest image accepted, in bytes
func (a *Adapter) MaxBytes() int64 {
	return a.maxBytes
}

// turns a URL or inline base64 image into an ImageRef, nothing goes to the vision model here
func (a *Adapter) Ingest(ctx context.Context, src Source) (*content.ImageRef, error) {
	switch {
	case strings.TrimSpace(src.URL) != "":
		return a.ingestURL(ctx, strings.TrimSpace(src.URL))
	case strings.TrimSpace(src.Base64) != "":
		return a.ingestInline(strings.TrimSpace(src.Base64))
	default:
		return nil, errors.Invalid("image", "imageUrl or base64 is required")
	}
}

func (a *Adapter) ingestURL(ctx context.Context, raw string) (*content.ImageRef, error) {
	// data URLs sometimes arrive in the imageUrl field
	if strings.HasPrefix(raw, "data:") {
		return a.ingestInline(raw)
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Invalid("imageUrl", "must be an absolute http(s) URL")
	}

	ext := strings.ToLower(path.Ext(u.Path))

	if ext != "" {
		mt, known := extensionTypes[ext]
		if !known || !a.allowed[mt] {
			return nil, errors.Invalid("imageUrl", fmt.Sprintf("unsupported image type %q, allowed: %s", ext, a.allowedList()))
		}

		return &content.ImageRef{URL: raw, MediaType: mt}, nil
	}

	if !a.verifyURLs {
		return nil, errors.Invalid("imageUrl", "cannot determine image type from URL, allowed: "+a.allowedList())
	}

	mt, err := a.probe(ctx, raw)
	if err != nil {
		return nil, err
	}

	return &content.ImageRef{URL: raw, MediaType: mt}, nil
}

// validating fetch for URLs without a suffix
func (a *Adapter) probe(ctx context.Context, raw string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return "", errors.Invalid("imageUrl", "invalid URL")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", errors.Invalid("imageUrl", "image URL is not reachable")
	}

	resp.Body.Close() //nolint:errcheck,gosec

	if resp.StatusCode != http.StatusOK {
		return "", errors.Invalid("imageUrl", fmt.Sprintf("image URL returned status %d", resp.StatusCode))
	}

	mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !a.allowed[strings.ToLower(mt)] {
		return "", errors.Invalid("imageUrl", fmt.Sprintf("unsupported content type %q, allowed: %s",
			resp.Header.Get("Content-Type"), a.allowedList()))
	}

	return strings.ToLower(mt), nil
}

func (a *Adapter) ingestInline(raw string) (*content.ImageRef, error) {
	declared, payload, err := parseDataURL(raw)
	if err != nil {
		return nil, err
	}

	if int64(base64.StdEncoding.DecodedLen(len(payload))) > a.maxBytes+2 {
		return nil, errors.Invalid("base64", fmt.Sprintf("image is larger than %d bytes", a.maxBytes))
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return nil, errors.Invalid("base64", "image is not valid base64")
	}

	if len(data) == 0 {
		return nil, errors.Invalid("base64", "image is empty")
	}

	// the bytes decide, the declared type only has to agree when present
	sniffed := mimetype.Detect(data).String()
	if !a.Allowed(sniffed) {
		return nil, errors.Invalid("base64", fmt.Sprintf("unsupported image type %q, allowed: %s", sniffed, a.allowedList()))
	}

	if declared != "" && !strings.EqualFold(declared, sniffed) {
		return nil, errors.Invalid("base64", fmt.Sprintf("declared type %s does not match image data (%s)", declared, sniffed))
	}

	return &content.ImageRef{MediaType: sniffed, Data: data}, nil
}

// splits "data:image/png;base64,AAAA" into its media type and payload; bare base64 has no type
func parseDataURL(raw string) (string, string, error) {
	if !strings.HasPrefix(raw, "data:") {
		return "", raw, nil
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return "", "", errors.Invalid("base64", "malformed data URL")
	}

	params := strings.Split(header, ";")
	if len(params) < 2 || !strings.EqualFold(params[len(params)-1], "base64") {
		return "", "", errors.Invalid("base64", "data URL must be base64 encoded")
	}

	declared := strings.ToLower(strings.TrimSpace(params[0]))
	if declared == "image/jpg" {
		declared = "image/jpeg"
	}

	return declared, payload, nil
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}

		return r
	}, payload)

	if data, err := base64.StdEncoding.DecodeString(payload); err == nil {
		return data, nil
	}

	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

// Staged is an uploaded image copied to a temp file and pushed to blob storage.
// Close removes the temp file; callers defer it until the upstream call is done.
type Staged struct {
	Ref  content.ImageRef
	path string
}

func (s *Staged) Close() error {
	if s == nil || s.path == "" {
		return nil
	}

	err := os.Remove(s.path)
	s.path = ""

	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// temp file path while staged, empty after Close
func (s *Staged) Path() string {
	return s.path
}

// copies an upload to a temp file, checks its type and stores it as a blob
func (a *Adapter) Stage(ctx context.Context, r io.Reader) (_ *Staged, err error) {
	if a.store == nil {
		return nil, fmt.Errorf("blob store is not configured")
	}

	f, err := os.CreateTemp(a.tempDir, "boomline-upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	tmp := f.Name()

	// remove the temp copy on every failure path
	defer func() {
		if err != nil {
			os.Remove(tmp) //nolint:errcheck,gosec
		}
	}()

	n, err := io.Copy(f, io.LimitReader(r, a.maxBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return nil, errors.Invalid("file", "failed to read upload")
	}

	if n == 0 {
		return nil, errors.Invalid("file", "upload is empty")
	}

	if n > a.maxBytes {
		return nil, errors.Invalid("file", fmt.Sprintf("upload is larger than %d bytes", a.maxBytes))
	}

	detected, err := mimetype.DetectFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("failed to detect upload type: %w", err)
	}

	if !a.Allowed(detected.String()) {
		return nil, errors.Invalid("file", fmt.Sprintf("unsupported image type %q, allowed: %s", detected.String(), a.allowedList()))
	}

	src, err := os.Open(tmp) //nolint:gosec // G304: path comes from os.CreateTemp
	if err != nil {
		return nil, fmt.Errorf("failed to reopen upload: %w", err)
	}
	defer src.Close() //nolint:errcheck

	location, err := a.store.Put(ctx, blob.ObjectName(detected.Extension()), detected.String(), src)
	if err != nil {
		return nil, &errors.UpstreamError{Op: "blob-upload", Message: err.Error(), Err: err}
	}

	return &Staged{
		Ref:  content.ImageRef{URL: location, MediaType: detected.String()},
		path: tmp,
	}, nil
}

// stages and immediately releases an upload, returning its public URL
func (a *Adapter) Upload(ctx context.Context, r io.Reader) (string, error) {
	staged, err := a.Stage(ctx, r)
	if err != nil {
		return "", err
	}

	defer staged.Close() //nolint:errcheck

	return staged.Ref.URL, nil
}

func (a *Adapter) allowedList() string {
	names := make([]string, 0, len(a.allowed))
	for _, name := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		if a.allowed[name] {
			names = append(names, strings.TrimPrefix(name, "image/"))
		}
	}

	return strings.Join(names, ", ")
}

package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"codeberg.org/boomline/server/internal/config"
	"github.com/oklog/ulid/v2"
)

// folder every uploaded image is stored under
const Prefix = "ai-content-gen"

// stores uploaded images and returns a publicly fetchable URL
type Store interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
}

// names a new object, ext includes the leading dot
func ObjectName(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return path.Join(Prefix, strings.ToLower(ulid.Make().String())+ext)
}

// creates the configured blob store; the closer releases client resources
func New(ctx context.Context, cfg *config.Config) (Store, io.Closer, error) {
	switch cfg.BlobProvider {
	case "gcs":
		store, err := NewGCSStore(ctx, cfg.BlobBucket, cfg.BlobPublicBaseURL)
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil
	case "filesystem", "":
		store, err := NewFilesystemStore(cfg.BlobDir, cfg.BlobPublicBaseURL)
		if err != nil {
			return nil, nil, err
		}

		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unsupported blob provider: %s", cfg.BlobProvider)
	}
}

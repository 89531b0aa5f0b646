package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// default public path the server mounts the blob directory on
const DefaultPublicPath = "/blobs"

// writes blobs to a local directory served by the API process
type FilesystemStore struct {
	dir           string
	publicBaseURL string
}

func NewFilesystemStore(dir, publicBaseURL string) (*FilesystemStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob directory is required")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	if publicBaseURL == "" {
		publicBaseURL = DefaultPublicPath
	}

	return &FilesystemStore{
		dir:           dir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// directory the blobs live in
func (s *FilesystemStore) Dir() string {
	return s.dir
}

func (s *FilesystemStore) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean := filepath.Clean("/" + name)[1:]
	if clean == "" {
		return "", fmt.Errorf("blob name is required")
	}

	target := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return "", fmt.Errorf("failed to create blob folder: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create blob: %w", err)
	}

	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck // gone after a successful rename

	if _, err := io.Copy(f, r); err != nil {
		f.Close() //nolint:errcheck,gosec
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}

	return s.publicBaseURL + "/" + clean, nil
}

func (s *FilesystemStore) Close() error {
	return nil
}

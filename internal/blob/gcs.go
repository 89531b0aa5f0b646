package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsPublicBaseURL = "https://storage.googleapis.com"

// uploads blobs to a Cloud Storage bucket with public read URLs
type GCSStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewGCSStore(ctx context.Context, bucket, publicBaseURL string) (*GCSStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("blob: bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if publicBaseURL == "" {
		publicBaseURL = gcsPublicBaseURL + "/" + bucket
	}

	return &GCSStore{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("blob: object name is required")
	}

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		w.Close() //nolint:errcheck,gosec
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	// the object only exists once the writer is closed
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.publicBaseURL + "/" + name, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"codeberg.org/boomline/server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)
	jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 32)...)
	gifBytes  = append([]byte("GIF89a"), bytes.Repeat([]byte{0}, 32)...)
)

type fakeStore struct {
	calls       int
	name        string
	contentType string
	data        []byte
	err         error
}

func (f *fakeStore) Put(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	f.calls++
	f.name = name
	f.contentType = contentType
	f.data, _ = io.ReadAll(r)

	if f.err != nil {
		return "", f.err
	}

	return "https://blobs.example.com/" + name, nil
}

func requireValidation(t *testing.T, err error) *errors.ValidationError {
	t.Helper()

	var v *errors.ValidationError
	require.ErrorAs(t, err, &v)

	return v
}

func TestIngestURL_SuffixAllowList(t *testing.T) {
	a := NewAdapter(nil, Options{})

	for _, raw := range []string{
		"https://cdn.example.com/photo.jpg",
		"https://cdn.example.com/photo.JPEG",
		"https://cdn.example.com/photo.png?sig=abc",
	} {
		ref, err := a.Ingest(context.Background(), Source{URL: raw})
		require.NoError(t, err, raw)
		assert.Equal(t, raw, ref.URL)
		assert.False(t, ref.IsInline())
	}

	for _, raw := range []string{
		"https://cdn.example.com/photo.bmp",
		"https://cdn.example.com/notes.txt",
		"https://cdn.example.com/anim.gif",
	} {
		_, err := a.Ingest(context.Background(), Source{URL: raw})
		v := requireValidation(t, err)
		assert.Equal(t, "imageUrl", v.Field, raw)
	}
}

func TestIngestURL_RejectedBeforeAnyNetworkCall(t *testing.T) {
	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/bmp")
	}))
	defer server.Close()

	a := NewAdapter(nil, Options{VerifyURLs: true, HTTPClient: server.Client()})

	_, err := a.Ingest(context.Background(), Source{URL: server.URL + "/image.bmp"})
	requireValidation(t, err)
	assert.Equal(t, int32(0), hits.Load())
}

func TestIngestURL_ConfiguredTypes(t *testing.T) {
	a := NewAdapter(nil, Options{AllowedTypes: []string{"jpeg", "png", "gif", "webp"}})

	_, err := a.Ingest(context.Background(), Source{URL: "https://cdn.example.com/anim.gif"})
	assert.NoError(t, err)

	_, err = a.Ingest(context.Background(), Source{URL: "https://cdn.example.com/pic.webp"})
	assert.NoError(t, err)
}

func TestIngestURL_NoSuffix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)

		switch r.URL.Path {
		case "/png":
			w.Header().Set("Content-Type", "image/png")
		case "/html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	strict := NewAdapter(nil, Options{})
	_, err := strict.Ingest(context.Background(), Source{URL: server.URL + "/png"})
	requireValidation(t, err)

	verifying := NewAdapter(nil, Options{VerifyURLs: true, HTTPClient: server.Client()})

	ref, err := verifying.Ingest(context.Background(), Source{URL: server.URL + "/png"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", ref.MediaType)

	_, err = verifying.Ingest(context.Background(), Source{URL: server.URL + "/html"})
	requireValidation(t, err)

	_, err = verifying.Ingest(context.Background(), Source{URL: server.URL + "/missing"})
	requireValidation(t, err)
}

func TestIngestURL_BadScheme(t *testing.T) {
	a := NewAdapter(nil, Options{})

	_, err := a.Ingest(context.Background(), Source{URL: "ftp://cdn.example.com/a.png"})
	requireValidation(t, err)

	_, err = a.Ingest(context.Background(), Source{URL: "/relative/a.png"})
	requireValidation(t, err)
}

func TestIngestInline(t *testing.T) {
	a := NewAdapter(nil, Options{})
	encoded := base64.StdEncoding.EncodeToString(pngBytes)

	ref, err := a.Ingest(context.Background(), Source{Base64: "data:image/png;base64," + encoded})
	require.NoError(t, err)
	assert.True(t, ref.IsInline())
	assert.Equal(t, "image/png", ref.MediaType)
	assert.Equal(t, pngBytes, ref.Data)

	// bare base64 is sniffed
	ref, err = a.Ingest(context.Background(), Source{Base64: base64.StdEncoding.EncodeToString(jpegBytes)})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ref.MediaType)

	// data URLs in the imageUrl field are treated as inline
	ref, err = a.Ingest(context.Background(), Source{URL: "data:image/jpg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ref.MediaType)
}

func TestIngestInline_Rejections(t *testing.T) {
	a := NewAdapter(nil, Options{MaxBytes: 1024})

	cases := map[string]string{
		"not base64":      "data:image/png;base64,***",
		"not an image":    "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello there")),
		"gif not allowed": base64.StdEncoding.EncodeToString(gifBytes),
		"type mismatch":   "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(pngBytes),
		"not base64 url":  "data:image/png,rawdata",
		"too large":       base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 4096)),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Ingest(context.Background(), Source{Base64: raw})
			requireValidation(t, err)
		})
	}
}

func TestIngest_NothingGiven(t *testing.T) {
	a := NewAdapter(nil, Options{})

	_, err := a.Ingest(context.Background(), Source{})
	v := requireValidation(t, err)
	assert.Equal(t, "image", v.Field)
}

func TestStage_UploadsAndCleansUp(t *testing.T) {
	store := &fakeStore{}
	dir := t.TempDir()
	a := NewAdapter(store, Options{TempDir: dir})

	staged, err := a.Stage(context.Background(), bytes.NewReader(pngBytes))
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, "image/png", store.contentType)
	assert.Equal(t, pngBytes, store.data)
	assert.True(t, strings.HasPrefix(store.name, "ai-content-gen/"))
	assert.True(t, strings.HasSuffix(store.name, ".png"))
	assert.Equal(t, "https://blobs.example.com/"+store.name, staged.Ref.URL)
	assert.Equal(t, "image/png", staged.Ref.MediaType)

	// the temp copy exists until Close
	path := staged.Path()
	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tempUploads(t, dir))

	require.NoError(t, staged.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// closing twice is fine
	assert.NoError(t, staged.Close())
}

func TestStage_RejectsDisallowedTypeWithoutUpload(t *testing.T) {
	store := &fakeStore{}
	dir := t.TempDir()
	a := NewAdapter(store, Options{TempDir: dir})

	_, err := a.Stage(context.Background(), strings.NewReader("just some text, not an image"))
	requireValidation(t, err)
	assert.Equal(t, 0, store.calls)

	assert.Equal(t, 0, tempUploads(t, dir))
}

func TestStage_OversizeAndEmpty(t *testing.T) {
	a := NewAdapter(&fakeStore{}, Options{MaxBytes: 16})

	_, err := a.Stage(context.Background(), bytes.NewReader(pngBytes))
	requireValidation(t, err)

	_, err = a.Stage(context.Background(), bytes.NewReader(nil))
	requireValidation(t, err)
}

func TestStage_StoreFailureIsUpstreamAndCleansUp(t *testing.T) {
	store := &fakeStore{err: io.ErrUnexpectedEOF}
	dir := t.TempDir()
	a := NewAdapter(store, Options{TempDir: dir})

	_, err := a.Stage(context.Background(), bytes.NewReader(pngBytes))

	var upstream *errors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "blob-upload", upstream.Op)

	assert.Equal(t, 0, tempUploads(t, dir))
}

func TestUpload(t *testing.T) {
	store := &fakeStore{}
	dir := t.TempDir()
	a := NewAdapter(store, Options{TempDir: dir})

	url, err := a.Upload(context.Background(), bytes.NewReader(jpegBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	assert.Equal(t, 0, tempUploads(t, dir))
}

func TestCaptionError(t *testing.T) {
	inner := &errors.UpstreamError{Op: "caption", Status: 500, Message: "boom"}
	err := &CaptionError{Err: inner}

	var upstream *errors.UpstreamError
	assert.ErrorAs(t, err, &upstream)
	assert.Equal(t, errors.CodeCaptionFailed, err.ErrorCode())
	assert.Contains(t, err.Error(), "caption generation failed")
}

// counts staged upload temp files
func tempUploads(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	n := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "boomline-upload-") {
			n++
		}
	}

	return n
}

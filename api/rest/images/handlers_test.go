package images

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/blob"
	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/llm"
	"codeberg.org/boomline/server/internal/llm/llmtest"
	"codeberg.org/boomline/server/internal/media"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

type fixture struct {
	router  *gin.Engine
	chat    *llmtest.Chat
	tempDir string
	blobDir string
}

func newFixture(t *testing.T, quota int) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		chat:    &llmtest.Chat{Content: "Golden hour on the pier"},
		tempDir: t.TempDir(),
		blobDir: t.TempDir(),
	}

	store, err := blob.NewFilesystemStore(f.blobDir, "http://localhost:8080/blobs")
	require.NoError(t, err)

	gen := generator.New(generator.Config{
		Builder: content.NewBuilder(content.Options{}),
		Text:    f.chat,
		Images:  &llmtest.Images{},
		Ledger:  ledger.New(ledger.NewMemoryStore(), ledger.Options{DailyQuota: quota}),
	})

	adapter := media.NewAdapter(store, media.Options{TempDir: f.tempDir, MaxBytes: 1024})

	f.router = gin.New()
	f.router.Use(auth.Identify(""))
	RegisterRoutes(f.router.Group("/api"), gen, adapter, nil)

	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(auth.ClientIDHeader, "tester")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func jsonRequest(t *testing.T, path string, body any) *http.Request {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func multipartRequest(t *testing.T, path string, file []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if file != nil {
		part, err := w.CreateFormFile("file", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	return len(entries)
}

func TestAnalyze_URL(t *testing.T) {
	f := newFixture(t, 5)

	w := f.do(jsonRequest(t, "/api/image-analyze", map[string]string{
		"imageUrl": "https://cdn.example.com/pier.jpg",
		"prompt":   "moody",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Golden hour on the pier", resp.Caption)
	assert.Equal(t, resp.Caption, resp.Result)
	assert.Equal(t, "https://cdn.example.com/pier.jpg", resp.ImageURL)
	assert.Equal(t, 4, resp.Remaining)

	require.Len(t, f.chat.Last().Messages, 1)
	require.Len(t, f.chat.Last().Messages[0].Images, 1)
	assert.Equal(t, "https://cdn.example.com/pier.jpg", f.chat.Last().Messages[0].Images[0].URL)
}

func TestAnalyze_Base64(t *testing.T) {
	f := newFixture(t, 5)

	w := f.do(jsonRequest(t, "/api/image-analyze", map[string]string{
		"base64": "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes),
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.ImageURL)
	assert.Equal(t, 1, f.chat.Calls())
}

func TestAnalyze_RejectedFormatNeverCallsUpstream(t *testing.T) {
	f := newFixture(t, 5)

	w := f.do(jsonRequest(t, "/api/image-analyze", map[string]string{"imageUrl": "https://cdn.example.com/scan.bmp"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeValidationError)
	assert.Equal(t, 0, f.chat.Calls())
}

func TestAnalyze_NoImage(t *testing.T) {
	f := newFixture(t, 5)

	w := f.do(jsonRequest(t, "/api/image-analyze", map[string]string{"prompt": "anything"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, f.chat.Calls())
}

func TestAnalyze_Multipart(t *testing.T) {
	f := newFixture(t, 5)

	w := f.do(multipartRequest(t, "/api/image-analyze", pngBytes, map[string]string{"prompt": "beach"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ImageURL, "http://localhost:8080/blobs/"))

	// uploaded to the blob store and the staged copy is gone
	assert.Equal(t, 1, countFiles(t, f.blobDir))
	assert.Equal(t, 0, countFiles(t, f.tempDir))
}

func TestAnalyze_MultipartWithoutFile(t *testing.T) {
	f := newFixture(t, 5)

	w := f.do(multipartRequest(t, "/api/image-analyze", nil, map[string]string{"prompt": "beach"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file")
}

func TestAnalyze_UpstreamFailureIsCaptionError(t *testing.T) {
	f := newFixture(t, 5)
	f.chat.Err = &llm.APIError{Provider: llm.ProviderOpenAI, StatusCode: http.StatusServiceUnavailable, Body: `{"error":{"message":"model unavailable"}}`}

	w := f.do(jsonRequest(t, "/api/image-analyze", map[string]string{"imageUrl": "https://cdn.example.com/pier.jpg"}))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeCaptionFailed)
}

func TestAnalyze_QuotaExceeded(t *testing.T) {
	f := newFixture(t, 1)

	body := map[string]string{"imageUrl": "https://cdn.example.com/pier.jpg"}

	w := f.do(jsonRequest(t, "/api/image-analyze", body))
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(jsonRequest(t, "/api/image-analyze", body))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, f.chat.Calls())
}

func TestUpload_Multipart(t *testing.T) {
	f := newFixture(t, 5)

	w := f.do(multipartRequest(t, "/api/blob-upload", pngBytes, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.URL, "http://localhost:8080/blobs/ai-content-gen"))
	assert.True(t, strings.HasSuffix(resp.URL, ".png"))
	assert.Equal(t, 0, countFiles(t, f.tempDir))
}

func TestUpload_RawBody(t *testing.T) {
	f := newFixture(t, 5)

	req := httptest.NewRequest(http.MethodPost, "/api/blob-upload", bytes.NewReader(pngBytes))
	req.Header.Set("Content-Type", "image/png")

	w := f.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, countFiles(t, f.blobDir))
}

func TestUpload_Rejections(t *testing.T) {
	f := newFixture(t, 5)

	t.Run("not an image", func(t *testing.T) {
		w := f.do(multipartRequest(t, "/api/blob-upload", []byte("just some text, definitely not a picture"), nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/blob-upload", bytes.NewReader(nil))
		w := f.do(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("too large", func(t *testing.T) {
		big := append(append([]byte{}, pngBytes...), make([]byte, 2048)...)
		req := httptest.NewRequest(http.MethodPost, "/api/blob-upload", bytes.NewReader(big))
		w := f.do(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	assert.Equal(t, 0, countFiles(t, f.blobDir))
	assert.Equal(t, 0, countFiles(t, f.tempDir))
}

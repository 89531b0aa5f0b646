package history

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/mirror"
	"codeberg.org/boomline/server/internal/result"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "client:tester"

type fixture struct {
	router *gin.Engine
	ledger *ledger.Ledger
	mirror *mirror.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		ledger: ledger.New(ledger.NewMemoryStore(), ledger.Options{DailyQuota: 5}),
		mirror: mirror.NewMemory(),
	}

	f.router = gin.New()
	f.router.Use(auth.Identify(""))
	RegisterRoutes(f.router.Group("/api"), f.ledger, f.mirror, nil)

	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.ClientIDHeader, "tester")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func (f *fixture) list(t *testing.T) []ledger.Entry {
	t.Helper()

	w := f.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp.Entries
}

func TestSaveAndList(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Prompt: "launch", Result: "New kicks", ContentType: "Instagram Caption"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, "History saved successfully", saved.Message)
	assert.NotEmpty(t, saved.ID)

	w = f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Prompt: "cat", Result: "https://img.example.com/cat.png", ContentType: "Generate Image"})
	require.Equal(t, http.StatusOK, w.Code)

	entries := f.list(t)
	require.Len(t, entries, 2)
	assert.Equal(t, result.KindImage, entries[0].Result.Kind)
	assert.Equal(t, "https://img.example.com/cat.png", entries[0].Result.URL)
	assert.Equal(t, saved.ID, entries[1].ID)
	assert.Equal(t, "New kicks", entries[1].Result.Value)

	// mirrored too, and saves are free
	assert.Len(t, f.mirror.Entries(owner), 2)

	quota, err := f.ledger.CheckQuota(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, 5, quota.Remaining)
}

func TestSave_RequiresResult(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Prompt: "p", Result: "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeValidationError)
	assert.Empty(t, f.list(t))
}

func TestList_EmptyIsArray(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entries":[]}`, w.Body.String())
}

func TestList_Limit(t *testing.T) {
	f := newFixture(t)

	for range 3 {
		w := f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Result: "r"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/history?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Entries, 2)

	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 3, resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasMore)

	w = f.do(t, http.MethodGet, "/api/history?limit=2&offset=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp = ListResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Entries, 1)
	assert.False(t, resp.Pagination.HasMore)

	w = f.do(t, http.MethodGet, "/api/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClear(t *testing.T) {
	f := newFixture(t)

	for range 2 {
		w := f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Result: "r"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := f.do(t, http.MethodPost, "/api/clear-history", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ClearResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Deleted)

	assert.Empty(t, f.list(t))
	assert.Empty(t, f.mirror.Entries(owner))
}

func TestClear_PartialMirrorFailure(t *testing.T) {
	f := newFixture(t)

	var ids []string

	for range 3 {
		w := f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Result: "r"})
		require.Equal(t, http.StatusOK, w.Code)

		var saved SaveResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
		ids = append(ids, saved.ID)
	}

	f.mirror.FailDelete[ids[1]] = true

	w := f.do(t, http.MethodPost, "/api/clear-history", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp PartialClearResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.CodePersistenceError, resp.Error)
	assert.Equal(t, 2, resp.Deleted)
	assert.Equal(t, 1, resp.Failed)

	// local history is gone regardless
	assert.Empty(t, f.list(t))
	require.Len(t, f.mirror.Entries(owner), 1)
	assert.Equal(t, ids[1], f.mirror.Entries(owner)[0].ID)
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Result: "Sunny days ahead"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/history/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "history.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestHistoryIsPerOwner(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/save-history", SaveRequest{Result: "mine"})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set(auth.ClientIDHeader, "someone-else")

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}

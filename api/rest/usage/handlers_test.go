package usage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/content"
	"codeberg.org/boomline/server/internal/generator"
	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/llm/llmtest"
	"codeberg.org/boomline/server/internal/result"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type premiumSet map[string]bool

func (p premiumSet) IsPremium(_ context.Context, email string) bool {
	return p[email]
}

const secret = "test-secret"

func setup(t *testing.T, quota int) (*gin.Engine, *ledger.Ledger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := ledger.New(ledger.NewMemoryStore(), ledger.Options{DailyQuota: quota, UpgradeURL: "https://upgrade.example.com"})

	gen := generator.New(generator.Config{
		Builder: content.NewBuilder(content.Options{}),
		Text:    &llmtest.Chat{Content: "unused"},
		Images:  &llmtest.Images{},
		Ledger:  l,
		Premium: premiumSet{"vip@example.com": true},
	})

	router := gin.New()
	router.Use(auth.Identify(secret))
	RegisterRoutes(router.Group("/api"), gen)

	return router, l
}

func get(t *testing.T, router *gin.Engine, header, value string) Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/usage", nil)
	req.Header.Set(header, value)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestUsage(t *testing.T) {
	router, l := setup(t, 2)

	resp := get(t, router, auth.ClientIDHeader, "tester")
	assert.True(t, resp.Allowed)
	assert.Equal(t, 2, resp.Remaining)
	assert.Equal(t, 2, resp.Limit)
	assert.Empty(t, resp.UpgradeURL)

	for range 2 {
		_, err := l.RecordAndCheckQuota(context.Background(), "client:tester", ledger.Entry{ContentType: "x", Result: result.Text("ok")})
		require.NoError(t, err)
	}

	resp = get(t, router, auth.ClientIDHeader, "tester")
	assert.False(t, resp.Allowed)
	assert.Equal(t, 0, resp.Remaining)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "https://upgrade.example.com", resp.UpgradeURL)
	assert.False(t, resp.Premium)
}

func TestUsage_Premium(t *testing.T) {
	router, _ := setup(t, 2)

	token, err := auth.GenerateJWT(secret, "42", "vip@example.com")
	require.NoError(t, err)

	resp := get(t, router, "Authorization", "Bearer "+token)
	assert.True(t, resp.Premium)
	assert.True(t, resp.Allowed)
	assert.Equal(t, -1, resp.Remaining)
}

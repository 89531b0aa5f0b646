package mirror

import (
	"context"
	"testing"

	"codeberg.org/boomline/server/internal/ledger"
	"codeberg.org/boomline/server/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string) ledger.Entry {
	return ledger.Entry{ID: id, ContentType: "Tweet", Prompt: "hi", Result: result.Text("hello")}
}

func TestMemory_AddAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Add(ctx, "alice", entry("1")))
	require.NoError(t, m.Add(ctx, "alice", entry("2")))
	require.NoError(t, m.Add(ctx, "bob", entry("3")))

	n, err := m.Clear(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, m.Entries("alice"))
	assert.Len(t, m.Entries("bob"), 1)
}

func TestMemory_PartialClearKeepsDeletions(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.FailDelete["2"] = true

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, m.Add(ctx, "alice", entry(id)))
	}

	n, err := m.Clear(ctx, "alice")
	assert.Equal(t, 2, n)

	var partial *PartialClearError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 2, partial.Deleted)
	assert.Equal(t, 1, partial.Failed)
	assert.Contains(t, partial.Error(), "1 failed")

	// no rollback of what went through
	left := m.Entries("alice")
	require.Len(t, left, 1)
	assert.Equal(t, "2", left[0].ID)
}

func TestMemory_SanitizesPrompt(t *testing.T) {
	m := NewMemory()
	e := entry("1")
	e.Prompt = `<script>alert(1)</script>sunset <b>beach</b>`

	require.NoError(t, m.Add(context.Background(), "alice", e))
	assert.Equal(t, "sunset beach", m.Entries("alice")[0].Prompt)
}

func TestNop(t *testing.T) {
	var m Mirror = Nop{}

	assert.NoError(t, m.Add(context.Background(), "a", entry("1")))

	n, err := m.Clear(context.Background(), "a")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}

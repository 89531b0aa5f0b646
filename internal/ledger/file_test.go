package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.json")

	store, err := NewFileStore(path)
	require.NoError(t, err)

	l := New(store, Options{DailyQuota: 5, Clock: newClock().Now})

	_, err = l.RecordAndCheckQuota(ctx, "alice", textEntry("one"))
	require.NoError(t, err)

	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	history, err := reopened.History(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "one", history[0].Prompt)

	counter, err := reopened.Counter(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, UsageCounter{DateKey: "2024-03-10", Count: 1}, counter)
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewFileStore(filepath.Join(dir, "ledger.json"))
	require.NoError(t, err)

	for range 3 {
		_, err := store.Commit(ctx, "alice", textEntry("p"), "2024-03-10", 5)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ledger.json", entries[0].Name())
}

func TestFileStore_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = store.Counter(context.Background(), "alice")
	assert.Error(t, err)

	// a failed load never overwrites the file
	_, err = store.Commit(context.Background(), "alice", textEntry("p"), "2024-03-10", 5)
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestFileStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	store, err := NewFileStore(path)
	require.NoError(t, err)

	history, err := store.History(context.Background(), "alice", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

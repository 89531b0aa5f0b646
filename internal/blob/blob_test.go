package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/boomline/server/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	a := ObjectName(".png")
	b := ObjectName("jpg")

	assert.True(t, strings.HasPrefix(a, Prefix+"/"))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.True(t, strings.HasSuffix(b, ".jpg"))
	assert.NotEqual(t, a, b)
	// prefix + "/" + 26 char ulid + ext
	assert.Len(t, a, len(Prefix)+1+26+4)
}

func TestFilesystemStore_Put(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFilesystemStore(dir, "http://localhost:8080/blobs/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "ai-content-gen/cat.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/blobs/ai-content-gen/cat.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "ai-content-gen", "cat.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, "ai-content-gen"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFilesystemStore_NameCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewFilesystemStore(dir, "")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "../../etc/evil.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/blobs/etc/evil.png", url)

	_, err = os.Stat(filepath.Join(dir, "etc", "evil.png"))
	assert.NoError(t, err)
}

func TestFilesystemStore_CanceledContext(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Put(ctx, "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Filesystem(t *testing.T) {
	store, closer, err := New(context.Background(), &config.Config{BlobProvider: "filesystem", BlobDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FilesystemStore{}, store)
	assert.NoError(t, closer.Close())

	_, _, err = New(context.Background(), &config.Config{BlobProvider: "s3"})
	assert.Error(t, err)
}

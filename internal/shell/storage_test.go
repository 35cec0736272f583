package shell

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoragePutMatch(t *testing.T) {
	storage := NewStorage(t.TempDir())
	ctx := context.Background()

	cache, err := storage.Open(ctx, "shell-v1-abcdef01")
	require.NoError(t, err)

	require.NoError(t, cache.Put(ctx, Response{Path: "/index.html", ContentType: "text/html", Body: []byte("<h1>hi</h1>")}))

	got, ok, err := cache.Match(ctx, "/index.html")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "text/html", got.ContentType)
	assert.Equal(t, []byte("<h1>hi</h1>"), got.Body)

	_, ok, err = cache.Match(ctx, "/missing.css")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorageNamesAndDelete(t *testing.T) {
	root := t.TempDir()
	storage := NewStorage(root)
	ctx := context.Background()

	for _, name := range []string{"b", "a"} {
		_, err := storage.Open(ctx, name)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), nil, 0o600))

	names, err := storage.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	require.NoError(t, storage.Delete(ctx, "a"))
	names, err = storage.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)

	_, found, err := storage.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStorageNamesOnMissingRoot(t *testing.T) {
	storage := NewStorage(filepath.Join(t.TempDir(), "nope"))

	names, err := storage.Names(context.Background())

	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStorageRejectsInvalidNames(t *testing.T) {
	storage := NewStorage(t.TempDir())

	for _, name := range []string{"", "..", "a/b", "../escape"} {
		_, err := storage.Open(context.Background(), name)
		assert.Error(t, err, name)
	}
}

func TestStorageHonorsCancelledContext(t *testing.T) {
	storage := NewStorage(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := storage.Open(ctx, "shell")

	assert.ErrorIs(t, err, context.Canceled)
}

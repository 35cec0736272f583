package toml

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/stride/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "storage.toml"))
	require.NoError(t, err)
	ctx := context.Background()

	history := `[{"date":"2024-01-01","steps":100}]`
	require.NoError(t, store.Put(ctx, "stepHistory", history))
	require.NoError(t, store.Put(ctx, "other", "x"))

	got, err := store.Get(ctx, "stepHistory")
	require.NoError(t, err)
	assert.Equal(t, history, got)

	require.NoError(t, store.Put(ctx, "stepHistory", "[]"))
	got, err = store.Get(ctx, "stepHistory")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(storeFileMode), info.Mode().Perm())
}

func TestStoreMissingFileAndKey(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "storage.toml"))
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "stepHistory")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Delete(context.Background(), "stepHistory"))
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "storage.toml"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", "1"))
	require.NoError(t, store.Put(ctx, "b", "2"))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	got, err := store.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestStoreRejectsNewerSchemaVersion(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storage.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"version = 2",
		"",
		"[[entries]]",
		"key = \"stepHistory\"",
		"value = \"[]\"",
	}, "\n")), 0o600))

	store, err := NewStore(path)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "stepHistory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage schema version 2")
}

func TestStoreReadsHandWrittenFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storage.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"[[entries]]",
		"key = \"stepHistory\"",
		"value = '[{\"date\":\"2024-01-01\",\"steps\":3}]'",
	}, "\n")), 0o600))

	store, err := NewStore(path)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "stepHistory")
	require.NoError(t, err)
	assert.Equal(t, `[{"date":"2024-01-01","steps":3}]`, got)
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	store, err := NewStore(filepath.Join(t.TempDir(), "storage.toml"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Put(ctx, "a", "1"), context.Canceled)
	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestStoreConcurrentWritersSharePathLock(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storage.toml")
	first, err := NewStore(path)
	require.NoError(t, err)
	second, err := NewStore(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := first
			if i%2 == 1 {
				store = second
			}
			assert.NoError(t, store.Put(context.Background(), "k"+strconv.Itoa(i), strconv.Itoa(i)))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		got, err := first.Get(context.Background(), "k"+strconv.Itoa(i))
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(i), got)
	}
}

package idempotency

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	store, err := New(filepath.Join(t.TempDir(), "idempotency.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Get_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get("new-key-12345")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestStore_PutAndGet(t *testing.T) {
	store := setupStore(t)

	stored, err := store.Put("key-1", "cs-abc")
	require.NoError(t, err)
	assert.Equal(t, "cs-abc", stored)

	got, err := store.Get("key-1")
	require.NoError(t, err)
	assert.Equal(t, "cs-abc", got)
}

func TestStore_Put_ReplayKeepsOriginal(t *testing.T) {
	store := setupStore(t)

	_, err := store.Put("key-1", "cs-abc")
	require.NoError(t, err)

	// Replay with a different session id must not overwrite
	stored, err := store.Put("key-1", "cs-other")
	require.NoError(t, err)
	assert.Equal(t, "cs-abc", stored)

	got, err := store.Get("key-1")
	require.NoError(t, err)
	assert.Equal(t, "cs-abc", got)
}

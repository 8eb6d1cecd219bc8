package docstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labfhir/internal/determinism"
	"labfhir/pkg/platform/sentinel"
)

func TestFSStore_RoundTrip(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("original pdf bytes")
	hash := determinism.ContentHash(data)

	exists, err := store.Exists(ctx, hash)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Get(ctx, hash)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.Put(ctx, hash, data))

	exists, err = store.Exists(ctx, hash)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFSStore_PutIsIdempotent(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("same bytes")
	hash := determinism.ContentHash(data)

	require.NoError(t, store.Put(ctx, hash, data))
	require.NoError(t, store.Put(ctx, hash, data))

	got, err := store.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFSStore_ShardsByHashPrefix(t *testing.T) {
	base := t.TempDir()
	store, err := NewFS(base)
	require.NoError(t, err)
	ctx := context.Background()

	data := []byte("sharded")
	hash := determinism.ContentHash(data)
	require.NoError(t, store.Put(ctx, hash, data))

	_, err = os.Stat(filepath.Join(base, hash[:2], hash[2:4], hash))
	require.NoError(t, err)
}

func TestFSStore_RejectsShortHash(t *testing.T) {
	store, err := NewFS(t.TempDir())
	require.NoError(t, err)

	err = store.Put(context.Background(), "ab", []byte("x"))
	require.Error(t, err)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	data := []byte("bytes")
	hash := determinism.ContentHash(data)

	require.NoError(t, store.Put(ctx, hash, data))

	got, err := store.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Stored copy is isolated from later caller mutation.
	data[0] = 'X'
	got2, err := store.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, got, got2)
}

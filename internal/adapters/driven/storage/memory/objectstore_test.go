package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

func TestObjectStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Put(ctx, "docs/a.md", []byte("hello"), map[string]string{"content_hash": "h1"}))

	data, err := store.Get(ctx, "docs/a.md")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "h1", store.Metadata("docs/a.md")["content_hash"])
	assert.Equal(t, 1, store.PutCount())
}

func TestObjectStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore()

	require.NoError(t, store.Put(ctx, "docs/a.md", []byte("a"), nil))
	require.NoError(t, store.Put(ctx, "docs/b.md", []byte("bb"), nil))
	require.NoError(t, store.Put(ctx, "other/c.md", []byte("c"), nil))

	infos, err := store.List(ctx, "docs/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "docs/a.md", infos[0].Key)
	assert.Equal(t, int64(2), infos[1].Size)
	assert.False(t, infos[0].Modified.IsZero())
}

func TestObjectStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewObjectStore()

	require.NoError(t, store.Put(ctx, "docs/a.md", []byte("a"), nil))
	require.NoError(t, store.Delete(ctx, "docs/a.md"))

	_, err := store.Get(ctx, "docs/a.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "docs/a.md"))
}

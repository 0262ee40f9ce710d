package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

func TestRecordStoreCursor(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	_, err := store.GetCursor(ctx, "src")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cursor := domain.SourceCursor{SourceID: "src", Cursor: "T1", LastSync: time.Now()}
	require.NoError(t, store.SaveCursor(ctx, cursor))

	got, err := store.GetCursor(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "T1", got.Cursor)

	// Overwrite
	cursor.Cursor = "T2"
	require.NoError(t, store.SaveCursor(ctx, cursor))
	got, err = store.GetCursor(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Cursor)
}

func TestRecordStoreItems(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	records, err := store.ListItems(ctx, "src")
	require.NoError(t, err)
	assert.Empty(t, records)

	rec := domain.ItemRecord{SourceID: "src", ItemID: "a", Fingerprint: "1", StagedHash: "h1", Path: "docs/a.md"}
	require.NoError(t, store.SaveItem(ctx, rec))

	records, err = store.ListItems(ctx, "src")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records["a"].Fingerprint)

	require.NoError(t, store.DeleteItem(ctx, "src", "a"))
	records, err = store.ListItems(ctx, "src")
	require.NoError(t, err)
	assert.Empty(t, records)

	// Deleting again is not an error.
	assert.NoError(t, store.DeleteItem(ctx, "src", "a"))
}

func TestRecordStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	require.NoError(t, store.SaveCursor(ctx, domain.SourceCursor{SourceID: "src", Cursor: "T1"}))
	require.NoError(t, store.SaveItem(ctx, domain.ItemRecord{SourceID: "src", ItemID: "a"}))

	require.NoError(t, store.ResetCursor(ctx, "src"))

	_, err := store.GetCursor(ctx, "src")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	records, err := store.ListItems(ctx, "src")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordStoreResourceHashes(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	_, err := store.GetResourceHash(ctx, "bo", domain.ResourceIndex)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.SaveResourceHash(ctx, "bo", domain.ResourceIndex, "abc"))
	hash, err := store.GetResourceHash(ctx, "bo", domain.ResourceIndex)
	require.NoError(t, err)
	assert.Equal(t, "abc", hash)

	// Hashes are keyed per (prefix, type).
	_, err = store.GetResourceHash(ctx, "bo", domain.ResourceIndexer)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.DeleteResourceHash(ctx, "bo", domain.ResourceIndex))
	_, err = store.GetResourceHash(ctx, "bo", domain.ResourceIndex)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

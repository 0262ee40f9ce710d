package driven

import (
	"context"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

// RecordStore persists the state owned by the core: one cursor per
// source, one record per tracked item, and the optional cache of
// last-applied resource-definition hashes.
//
// Each record family has exactly one writer component (the sync
// orchestrator for cursors and item records, the vertical manager for
// resource hashes) and is safe to read concurrently.
type RecordStore interface {
	// GetCursor returns the cursor for a source, or domain.ErrNotFound.
	GetCursor(ctx context.Context, sourceID string) (*domain.SourceCursor, error)

	// SaveCursor stores or replaces a source's cursor.
	SaveCursor(ctx context.Context, cursor domain.SourceCursor) error

	// ResetCursor removes a source's cursor and all of its item records,
	// forcing a full re-scan on the next run. Explicit operator action
	// only.
	ResetCursor(ctx context.Context, sourceID string) error

	// ListItems returns all item records for a source keyed by item ID.
	ListItems(ctx context.Context, sourceID string) (map[string]domain.ItemRecord, error)

	// SaveItem stores or replaces one item record.
	SaveItem(ctx context.Context, record domain.ItemRecord) error

	// DeleteItem removes one item record. Missing records are not an
	// error.
	DeleteItem(ctx context.Context, sourceID, itemID string) error

	// GetResourceHash returns the cached last-applied definition hash for
	// (prefix, type), or domain.ErrNotFound.
	GetResourceHash(ctx context.Context, prefix string, typ domain.ResourceType) (string, error)

	// SaveResourceHash caches a last-applied definition hash.
	SaveResourceHash(ctx context.Context, prefix string, typ domain.ResourceType, hash string) error

	// DeleteResourceHash drops cached hashes for a prefix. Used on
	// teardown so a future apply re-checks live state.
	DeleteResourceHash(ctx context.Context, prefix string, typ domain.ResourceType) error
}

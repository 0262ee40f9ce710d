package services

import (
	"context"
	"fmt"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// maxListingPages bounds a single listing walk so a source that keeps
// returning HasMore cannot spin forever.
const maxListingPages = 10000

// ChangeTracker computes the added/modified/deleted delta between a
// source listing and the previously recorded item set.
//
// The tracker is stateless per call: it never persists the cursor or the
// records itself. The caller adopts the returned cursor only after the
// corresponding staging batch is fully accounted, which preserves
// at-least-once delivery across a crash between computation and staging.
type ChangeTracker struct {
	source driven.ContentSource
}

// NewChangeTracker creates a change tracker for a source.
func NewChangeTracker(source driven.ContentSource) *ChangeTracker {
	return &ChangeTracker{source: source}
}

// ComputeDelta walks the source listing from the given cursor and
// partitions every known item into exactly one of added, modified,
// deleted or unchanged.
//
// On a first run (empty cursor) every discovered item is added. If a page
// fetch fails mid-walk, the partial delta discovered so far is returned
// together with a domain.ErrListingIncomplete error: deletions are never
// inferred from an incomplete listing, and the cursor does not advance.
func (t *ChangeTracker) ComputeDelta(
	ctx context.Context,
	records map[string]domain.ItemRecord,
	cursor string,
) (*domain.Delta, error) {
	delta := &domain.Delta{}
	seen := make(map[string]bool, len(records))
	tombstones := make([]domain.Item, 0)

	pageCursor := cursor
	incremental := cursor != "" && t.source.Capabilities().SupportsDelta

	for page := 0; ; page++ {
		if page >= maxListingPages {
			return delta, fmt.Errorf("%w: listing exceeded %d pages", domain.ErrListingIncomplete, maxListingPages)
		}

		select {
		case <-ctx.Done():
			return delta, ctx.Err()
		default:
		}

		result, err := t.source.ListChanges(ctx, pageCursor)
		if err != nil {
			return delta, fmt.Errorf("%w: list page %d: %v", domain.ErrListingIncomplete, page, err)
		}

		for _, item := range result.Items {
			if item.Deleted {
				tombstones = append(tombstones, item)
				seen[item.ID] = true
				continue
			}
			seen[item.ID] = true

			prior, known := records[item.ID]
			switch {
			case !known:
				delta.Added = append(delta.Added, item)
			case prior.Fingerprint != item.Fingerprint:
				delta.Modified = append(delta.Modified, item)
			default:
				delta.Unchanged = append(delta.Unchanged, item)
			}
		}

		if !result.HasMore {
			delta.NewCursor = result.NextCursor
			break
		}
		pageCursor = result.NextCursor
	}

	delta.Complete = true

	// Deletions: tombstones from delta-capable sources, or absence from a
	// complete full enumeration. An incremental listing only contains
	// changes, so absence there means nothing.
	delta.Deleted = tombstones
	if !incremental {
		for id, rec := range records {
			if seen[id] {
				continue
			}
			delta.Deleted = append(delta.Deleted, domain.Item{
				ID:   id,
				Path: rec.Path,
			})
		}
	}

	logger.Debug("Delta for %s: %d added, %d modified, %d deleted, %d unchanged",
		t.source.SourceID(), len(delta.Added), len(delta.Modified), len(delta.Deleted), len(delta.Unchanged))

	return delta, nil
}

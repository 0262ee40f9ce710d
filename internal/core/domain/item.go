package domain

import "time"

// Item is one entry from a content source listing.
type Item struct {
	// ID is the source's stable identifier for the item.
	ID string

	// Path is the item's logical path within the source.
	Path string

	// Name is the file name component of the path.
	Name string

	// Fingerprint is the content hash the source reports for the item.
	// It is compared against the previously recorded fingerprint to
	// classify the item as modified; it is never trusted as the staged
	// content hash, which the stager recomputes from the fetched bytes.
	Fingerprint string

	// Size is the item size in bytes as reported by the listing.
	Size int64

	// ContentType is the MIME type reported by the source, if any.
	ContentType string

	// SourceURL is the item's canonical URL at the source.
	SourceURL string

	// Modified is the source's last-modified timestamp.
	Modified time.Time

	// Deleted marks a tombstone entry in a delta listing.
	Deleted bool
}

// ItemRecord is the persisted tracking state for one remote item.
type ItemRecord struct {
	// SourceID links the record to its source.
	SourceID string

	// ItemID is the source's stable identifier.
	ItemID string

	// Fingerprint is the source-reported content hash observed when the
	// item was last staged.
	Fingerprint string

	// StagedHash is the SHA-256 of the bytes actually written to durable
	// storage. Used by the stager to short-circuit redundant writes.
	StagedHash string

	// Path is the item's logical path when last seen.
	Path string

	// StagedAt is when the item was last staged.
	StagedAt time.Time
}

// SourceCursor is the persisted resume point for incremental scanning.
// Exactly one cursor exists per source; it is never rolled back except by
// an explicit reset.
type SourceCursor struct {
	// SourceID identifies the source this cursor belongs to.
	SourceID string

	// Cursor is an opaque token understood only by the source adapter.
	Cursor string

	// LastSync is when the last fully accounted run completed.
	LastSync time.Time
}

// Delta partitions the items known to source and tracker into the four
// change classes. Every item appears in exactly one partition.
type Delta struct {
	// Added are items with no prior record.
	Added []Item

	// Modified are items whose observed fingerprint differs from the
	// recorded one.
	Modified []Item

	// Deleted are items present in the prior record set but gone from the
	// source. Only populated when Complete is true.
	Deleted []Item

	// Unchanged are items whose fingerprint matches the recorded one.
	Unchanged []Item

	// NewCursor is the cursor to adopt once staging is fully accounted.
	// Empty when the walk did not complete.
	NewCursor string

	// Complete reports whether the listing walk finished. Deletions are
	// never inferred from an incomplete walk.
	Complete bool
}

// Changed returns the items that need staging (added + modified).
func (d *Delta) Changed() []Item {
	changed := make([]Item, 0, len(d.Added)+len(d.Modified))
	changed = append(changed, d.Added...)
	changed = append(changed, d.Modified...)
	return changed
}

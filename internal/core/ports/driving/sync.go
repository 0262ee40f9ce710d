package driving

import "context"

// ItemFailure records one item that could not be staged or deleted.
type ItemFailure struct {
	ItemID string
	Path   string
	Err    error
}

// SyncSummary is the outcome of one sync invocation.
type SyncSummary struct {
	// RunID uniquely identifies this invocation in logs and output.
	RunID string

	// SourceID is the synchronised source.
	SourceID string

	// Staged is the number of items written to durable storage.
	Staged int

	// Skipped is the number of changed-looking items whose recomputed
	// fingerprint matched the last staged hash (no write performed).
	Skipped int

	// Deleted is the number of staged objects removed.
	Deleted int

	// Unchanged is the number of items the delta left untouched.
	Unchanged int

	// Failures are the per-item errors collected during the run.
	Failures []ItemFailure

	// CursorAdvanced reports whether the new cursor was adopted. False
	// when the run was cancelled or the listing was incomplete.
	CursorAdvanced bool
}

// Failed returns the number of failed items.
func (s *SyncSummary) Failed() int {
	return len(s.Failures)
}

// Syncer runs the change tracker and content stager for one source.
type Syncer interface {
	// Sync performs one synchronisation pass: compute the delta, stage
	// changed items, propagate deletions, and adopt the new cursor once
	// the batch is fully accounted.
	//
	// A non-nil summary is returned alongside domain.ErrPartialFailure
	// when some items failed but the run is otherwise usable.
	Sync(ctx context.Context) (*SyncSummary, error)

	// Reset discards the source's cursor and item records, forcing a full
	// re-scan on the next sync.
	Reset(ctx context.Context) error
}

package driven

import (
	"context"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

// Page is one page of a content source listing.
type Page struct {
	// Items are the entries on this page.
	Items []domain.Item

	// NextCursor is the cursor for the next page while HasMore is true,
	// or the resume cursor for the next run once the walk is complete.
	NextCursor string

	// HasMore reports whether further pages exist.
	HasMore bool
}

// Attributes are the item attributes returned alongside fetched bytes.
type Attributes struct {
	Name        string
	Path        string
	ContentType string
	SourceURL   string
	Size        int64
	Modified    time.Time
}

// SourceCapabilities describes listing behaviour the tracker needs to
// know about.
type SourceCapabilities struct {
	// SupportsDelta indicates ListChanges returns only changed items when
	// given a cursor, with deletions flagged explicitly as tombstones.
	// Without it, every listing is a full enumeration and deletions are
	// inferred from absence.
	SupportsDelta bool
}

// ContentSource lists and fetches items from a remote document source.
type ContentSource interface {
	// SourceID returns the configured source identifier.
	SourceID() string

	// Capabilities returns what this source supports.
	Capabilities() SourceCapabilities

	// ListChanges returns one page of the listing. An empty cursor starts
	// a full enumeration; a cursor from a previous complete walk resumes
	// incrementally for delta-capable sources. Transport failures are
	// wrapped with domain.ErrTransient when retryable.
	ListChanges(ctx context.Context, cursor string) (*Page, error)

	// Fetch retrieves an item's bytes and attributes.
	Fetch(ctx context.Context, itemID string) ([]byte, *Attributes, error)
}

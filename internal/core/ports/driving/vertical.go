package driving

import (
	"context"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

// VerticalManager provisions and tears down the four-resource indexing
// pipeline for a prefix.
type VerticalManager interface {
	// Apply creates or updates the vertical's resources in dependency
	// order and triggers one indexer run on success. Safe to call
	// repeatedly with identical inputs: already-correct resources are
	// no-ops. On failure the returned states cover the resources
	// attempted so far; nothing is rolled back.
	Apply(ctx context.Context, cfg domain.VerticalConfig) ([]domain.ResourceState, error)

	// Teardown deletes the vertical's resources in reverse dependency
	// order. Best-effort: each deletion is attempted independently and a
	// missing resource counts as already absent.
	Teardown(ctx context.Context, prefix string, kind domain.VerticalKind) ([]domain.ResourceState, error)
}

// IndexerMonitor triggers indexer runs and normalises execution status.
type IndexerMonitor interface {
	// Run triggers one execution of the named indexer and returns without
	// waiting for completion.
	Run(ctx context.Context, name string) error

	// Status maps the indexer's most recent execution into a RunReport.
	// Callers needing completion poll Status at their own interval.
	Status(ctx context.Context, name string) (*domain.RunReport, error)
}

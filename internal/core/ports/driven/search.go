package driven

import (
	"context"
	"time"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

// Definition is one intended pipeline resource definition. The body is
// the service-level JSON document; the core treats it as opaque apart
// from hashing it for idempotency checks.
type Definition struct {
	Type domain.ResourceType
	Name string
	Body map[string]any
}

// DefinitionBuilder produces the four concrete resource definitions for a
// vertical. The builder owns all service-specific schema (field lists,
// vector profiles, parsing modes); the manager owns ordering and
// idempotency.
type DefinitionBuilder interface {
	// Build returns definitions in creation order.
	Build(cfg domain.VerticalConfig, names domain.VerticalNames) ([]Definition, error)
}

// ResourceClient performs CRUD against the search service's pipeline
// resource collections.
type ResourceClient interface {
	// Upsert creates or replaces a resource definition.
	Upsert(ctx context.Context, typ domain.ResourceType, name string, body map[string]any) error

	// Get fetches a live resource definition. Returns domain.ErrNotFound
	// for a missing resource.
	Get(ctx context.Context, typ domain.ResourceType, name string) (map[string]any, error)

	// Delete removes a resource. Returns domain.ErrNotFound for a missing
	// resource; callers treat that as already deleted.
	Delete(ctx context.Context, typ domain.ResourceType, name string) error

	// List enumerates resource names of one type.
	List(ctx context.Context, typ domain.ResourceType) ([]string, error)
}

// ExecutionError is one error entry from an indexer execution.
type ExecutionError struct {
	// Message is the service's error text, verbatim.
	Message string

	// Key identifies the failed document when the service reports one.
	Key string
}

// Execution is one entry of an indexer's execution history.
type Execution struct {
	// Status is the service-level status string ("success",
	// "transientFailure", "persistentFailure", "inProgress").
	Status string

	// ItemsProcessed is the count of successfully processed items.
	ItemsProcessed int

	// ItemsFailed is the count of failed items.
	ItemsFailed int

	// Errors are the execution's error entries, oldest first.
	Errors []ExecutionError

	// StartTime is when the execution started.
	StartTime time.Time

	// EndTime is when the execution ended; zero while still running.
	EndTime time.Time
}

// IndexerClient triggers indexer runs and reads execution history.
type IndexerClient interface {
	// Trigger starts one run. It does not wait for completion.
	Trigger(ctx context.Context, name string) error

	// ExecutionHistory returns the indexer's executions, newest first.
	// Returns domain.ErrNotFound for an unknown indexer.
	ExecutionHistory(ctx context.Context, name string) ([]Execution, error)
}

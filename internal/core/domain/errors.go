package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCursor indicates a persisted cursor could not be decoded.
	// Callers treat this as a first run and fall back to a full re-scan.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrListingIncomplete indicates the source listing could not be
	// confirmed complete. Deletions must not be inferred from an
	// incomplete listing and the cursor must not advance.
	ErrListingIncomplete = errors.New("source listing incomplete")

	// ErrTransient indicates a transient I/O failure (timeout, rate limit).
	// Operations wrapped with this sentinel are safe to retry.
	ErrTransient = errors.New("transient error")

	// ErrPartialFailure indicates a batch completed but some items or
	// resources failed. The run is usable; the caller decides whether to
	// retry the failed subset.
	ErrPartialFailure = errors.New("completed with failures")

	// ErrResourceConflict indicates a pipeline resource exists with an
	// incompatible immutable property (for example vector dimensionality).
	// The resource must be deleted and recreated manually.
	ErrResourceConflict = errors.New("resource definition conflict")

	// ErrSourceUnavailable indicates the content source is unreachable or
	// misconfigured. Fatal for the whole command, not a per-item failure.
	ErrSourceUnavailable = errors.New("content source unavailable")

	// ErrSearchUnavailable indicates the search service is unreachable or
	// credentials are invalid.
	ErrSearchUnavailable = errors.New("search service unavailable")
)

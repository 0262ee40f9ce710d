package domain

import "time"

// RunStatus is the normalized status of one indexer execution.
type RunStatus string

const (
	// RunSucceeded means the execution finished with zero failed items.
	RunSucceeded RunStatus = "succeeded"

	// RunSucceededWithWarnings means the execution finished with some
	// items processed and some failed.
	RunSucceededWithWarnings RunStatus = "succeededWithWarnings"

	// RunFailed means a fatal error: zero items processed or a
	// configuration fault.
	RunFailed RunStatus = "failed"

	// RunInProgress means the execution has no end time yet. Never a
	// terminal state; callers re-poll.
	RunInProgress RunStatus = "inProgress"
)

// Terminal reports whether the status can no longer change without a new
// trigger.
func (s RunStatus) Terminal() bool {
	return s == RunSucceeded || s == RunSucceededWithWarnings || s == RunFailed
}

// MaxReportedErrors caps the number of errors surfaced after the first,
// bounding report size for noisy executions.
const MaxReportedErrors = 5

// RunReport is the normalized outcome of one indexer execution. Reports
// are transient: recomputed on every poll, never persisted by the monitor.
type RunReport struct {
	// Indexer is the indexer name the report describes.
	Indexer string

	// Status is the normalized execution status.
	Status RunStatus

	// ItemsProcessed is the number of successfully processed items.
	ItemsProcessed int

	// ItemsFailed is the number of items that failed.
	ItemsFailed int

	// FirstError is the first error message, verbatim, for operator
	// diagnosis. Empty when the execution reported no errors.
	FirstError string

	// MoreErrors holds up to MaxReportedErrors subsequent error messages.
	MoreErrors []string

	// StartTime is when the execution started.
	StartTime time.Time

	// EndTime is when the execution ended; zero while in progress.
	EndTime time.Time
}

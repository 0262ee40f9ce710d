package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driving"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// DefaultSyncConcurrency is the staging worker pool size.
const DefaultSyncConcurrency = 4

// SyncOrchestrator drives one synchronisation pass: compute the delta,
// stage changed items on a worker pool, propagate deletions, and adopt
// the new cursor once the batch is fully accounted.
type SyncOrchestrator struct {
	source      driven.ContentSource
	tracker     *ChangeTracker
	stager      *ContentStager
	records     driven.RecordStore
	concurrency int
}

// Compile-time interface check.
var _ driving.Syncer = (*SyncOrchestrator)(nil)

// SyncOption configures a SyncOrchestrator.
type SyncOption func(*SyncOrchestrator)

// WithConcurrency sets the staging worker pool size.
func WithConcurrency(n int) SyncOption {
	return func(s *SyncOrchestrator) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewSyncOrchestrator wires a tracker and stager over a record store.
func NewSyncOrchestrator(
	source driven.ContentSource,
	tracker *ChangeTracker,
	stager *ContentStager,
	records driven.RecordStore,
	opts ...SyncOption,
) *SyncOrchestrator {
	s := &SyncOrchestrator{
		source:      source,
		tracker:     tracker,
		stager:      stager,
		records:     records,
		concurrency: DefaultSyncConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stageJob is one unit of worker-pool work.
type stageJob struct {
	item      domain.Item
	priorHash string
}

// Sync performs one synchronisation pass for the configured source.
//
// The new cursor is adopted only when the listing completed and staging
// was not cancelled mid-batch; per-item failures are collected into the
// summary rather than aborting the run. A run with item failures returns
// the summary alongside domain.ErrPartialFailure.
func (s *SyncOrchestrator) Sync(ctx context.Context) (*driving.SyncSummary, error) {
	sourceID := s.source.SourceID()
	summary := &driving.SyncSummary{
		RunID:    uuid.NewString(),
		SourceID: sourceID,
	}

	cursor := ""
	stored, err := s.records.GetCursor(ctx, sourceID)
	switch {
	case err == nil:
		cursor = stored.Cursor
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("No cursor for %s, performing full scan", sourceID)
	default:
		// Corrupt or unreadable cursor state degrades to a full re-scan;
		// the fingerprint short-circuit bounds the cost.
		logger.Info("Cursor for %s unreadable, performing full scan: %v", sourceID, err)
	}

	records, err := s.records.ListItems(ctx, sourceID)
	if err != nil {
		return summary, fmt.Errorf("load item records for %s: %w", sourceID, err)
	}

	delta, listErr := s.tracker.ComputeDelta(ctx, records, cursor)
	if listErr != nil && !errors.Is(listErr, domain.ErrListingIncomplete) {
		return summary, fmt.Errorf("compute delta for %s: %w", sourceID, listErr)
	}
	summary.Unchanged = len(delta.Unchanged)

	logger.Info("Sync %s (%s): %d to stage, %d to delete, %d unchanged",
		sourceID, summary.RunID, len(delta.Added)+len(delta.Modified), len(delta.Deleted), summary.Unchanged)

	cancelled := s.stageBatch(ctx, delta, records, summary)
	s.deleteBatch(ctx, delta, records, summary)

	// The cursor only advances once every item in a complete listing has
	// been accounted for, successes and recorded failures alike. A
	// cancelled batch keeps the old cursor so the next run re-discovers
	// the remainder.
	if delta.Complete && !cancelled {
		saveErr := s.records.SaveCursor(ctx, domain.SourceCursor{
			SourceID: sourceID,
			Cursor:   delta.NewCursor,
			LastSync: time.Now(),
		})
		if saveErr != nil {
			summary.Failures = append(summary.Failures, driving.ItemFailure{
				Err: fmt.Errorf("save cursor: %w", saveErr),
			})
		} else {
			summary.CursorAdvanced = true
		}
	}

	logger.Info("Sync %s complete: %d staged, %d skipped, %d deleted, %d failed",
		sourceID, summary.Staged, summary.Skipped, summary.Deleted, summary.Failed())

	switch {
	case listErr != nil:
		return summary, fmt.Errorf("%w: %v", domain.ErrPartialFailure, listErr)
	case cancelled:
		return summary, ctx.Err()
	case summary.Failed() > 0:
		return summary, fmt.Errorf("%w: %d of %d items failed", domain.ErrPartialFailure,
			summary.Failed(), summary.Staged+summary.Skipped+summary.Failed())
	}
	return summary, nil
}

// stageBatch runs added and modified items through the stager on a
// fixed-size worker pool. It reports whether the batch was cut short by
// context cancellation.
func (s *SyncOrchestrator) stageBatch(
	ctx context.Context,
	delta *domain.Delta,
	records map[string]domain.ItemRecord,
	summary *driving.SyncSummary,
) bool {
	jobs := make([]stageJob, 0, len(delta.Added)+len(delta.Modified))
	for _, item := range delta.Added {
		jobs = append(jobs, stageJob{item: item})
	}
	for _, item := range delta.Modified {
		job := stageJob{item: item}
		if prior, ok := records[item.ID]; ok {
			job.priorHash = prior.StagedHash
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return false
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		cancelled bool
	)
	work := make(chan stageJob)

	workers := s.concurrency
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range work {
				s.stageOne(ctx, job, summary, &mu)
			}
		}()
	}

dispatch:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			cancelled = true
			break dispatch
		case work <- job:
		}
	}
	close(work)
	wg.Wait()
	return cancelled
}

// stageOne stages a single item and records the outcome under mu.
func (s *SyncOrchestrator) stageOne(ctx context.Context, job stageJob, summary *driving.SyncSummary, mu *sync.Mutex) {
	staged, skipped, err := s.stager.Stage(ctx, job.item, job.priorHash)

	mu.Lock()
	defer mu.Unlock()

	if err != nil {
		logger.Info("Failed to stage %s: %v", job.item.Path, err)
		summary.Failures = append(summary.Failures, driving.ItemFailure{
			ItemID: job.item.ID,
			Path:   job.item.Path,
			Err:    err,
		})
		return
	}

	record := domain.ItemRecord{
		SourceID:    s.source.SourceID(),
		ItemID:      job.item.ID,
		Fingerprint: job.item.Fingerprint,
		Path:        job.item.Path,
		StagedAt:    time.Now(),
	}
	if skipped {
		// Content identical: keep the staged hash, but record the new
		// source fingerprint so the next delta is clean.
		record.StagedHash = job.priorHash
	} else {
		record.StagedHash = staged.StagedHash
	}

	if saveErr := s.records.SaveItem(ctx, record); saveErr != nil {
		summary.Failures = append(summary.Failures, driving.ItemFailure{
			ItemID: job.item.ID,
			Path:   job.item.Path,
			Err:    fmt.Errorf("save record: %w", saveErr),
		})
		return
	}

	if skipped {
		summary.Skipped++
	} else {
		summary.Staged++
	}
}

// deleteBatch removes staged objects and their records for deleted items.
// The tracker only reports deletions from a confirmed-complete listing,
// so an empty Deleted slice here is the fail-safe, not a bug.
func (s *SyncOrchestrator) deleteBatch(
	ctx context.Context,
	delta *domain.Delta,
	records map[string]domain.ItemRecord,
	summary *driving.SyncSummary,
) {
	for _, item := range delta.Deleted {
		path := item.Path
		if path == "" {
			// Tombstones from delta listings carry the item ID only.
			if rec, ok := records[item.ID]; ok {
				path = rec.Path
			}
		}
		if path == "" {
			// Never staged here, nothing to remove.
			continue
		}
		if err := s.stager.Unstage(ctx, path); err != nil {
			summary.Failures = append(summary.Failures, driving.ItemFailure{
				ItemID: item.ID,
				Path:   path,
				Err:    err,
			})
			continue
		}
		if err := s.records.DeleteItem(ctx, s.source.SourceID(), item.ID); err != nil {
			summary.Failures = append(summary.Failures, driving.ItemFailure{
				ItemID: item.ID,
				Path:   path,
				Err:    fmt.Errorf("delete record: %w", err),
			})
			continue
		}
		summary.Deleted++
	}
}

// Reset discards the source's cursor and item records so the next sync
// performs a full re-scan. Staged objects are left in place; re-staging
// is cheap because unchanged content short-circuits on its hash.
func (s *SyncOrchestrator) Reset(ctx context.Context) error {
	if err := s.records.ResetCursor(ctx, s.source.SourceID()); err != nil {
		return fmt.Errorf("reset %s: %w", s.source.SourceID(), err)
	}
	logger.Info("Reset sync state for %s", s.source.SourceID())
	return nil
}

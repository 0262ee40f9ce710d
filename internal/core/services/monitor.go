package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driving"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// ExecutionMonitor triggers indexer runs and normalises the service's
// execution history into RunReports. It never blocks waiting for
// completion; callers poll Status at their own interval.
type ExecutionMonitor struct {
	indexers driven.IndexerClient
}

var _ driving.IndexerMonitor = (*ExecutionMonitor)(nil)

// NewExecutionMonitor creates a monitor over an indexer client.
func NewExecutionMonitor(indexers driven.IndexerClient) *ExecutionMonitor {
	return &ExecutionMonitor{indexers: indexers}
}

// Run triggers one execution of the named indexer and returns without
// waiting for completion.
func (m *ExecutionMonitor) Run(ctx context.Context, name string) error {
	if err := m.indexers.Trigger(ctx, name); err != nil {
		return fmt.Errorf("trigger %q: %w", name, err)
	}
	logger.Info("Triggered indexer %s", name)
	return nil
}

// Status maps the indexer's most recent execution into a RunReport.
// An indexer with no execution history yet reports inProgress: a trigger
// can take a moment to show up in the history feed.
func (m *ExecutionMonitor) Status(ctx context.Context, name string) (*domain.RunReport, error) {
	history, err := m.indexers.ExecutionHistory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("execution history for %q: %w", name, err)
	}

	report := &domain.RunReport{
		Indexer: name,
		Status:  domain.RunInProgress,
	}
	if len(history) == 0 {
		return report, nil
	}

	latest := history[0]
	report.ItemsProcessed = latest.ItemsProcessed
	report.ItemsFailed = latest.ItemsFailed
	report.StartTime = latest.StartTime
	report.EndTime = latest.EndTime
	report.Status = mapStatus(latest)

	for i, execErr := range latest.Errors {
		if i == 0 {
			report.FirstError = execErr.Message
			continue
		}
		if len(report.MoreErrors) >= domain.MaxReportedErrors {
			break
		}
		report.MoreErrors = append(report.MoreErrors, execErr.Message)
	}

	return report, nil
}

// mapStatus normalises one service execution into a RunStatus.
func mapStatus(execution driven.Execution) domain.RunStatus {
	if execution.EndTime.IsZero() {
		return domain.RunInProgress
	}
	if execution.ItemsProcessed > 0 && execution.ItemsFailed > 0 {
		return domain.RunSucceededWithWarnings
	}
	if strings.EqualFold(execution.Status, "success") {
		return domain.RunSucceeded
	}
	return domain.RunFailed
}

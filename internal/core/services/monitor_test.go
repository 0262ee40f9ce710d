package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/storage/memory"
	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
)

func TestMonitor_RunThenInProgress(t *testing.T) {
	ctx := context.Background()
	search := memory.NewSearchService()
	require.NoError(t, search.Upsert(ctx, domain.ResourceIndexer, "ix-bo", map[string]any{"name": "ix-bo"}))
	monitor := NewExecutionMonitor(search)

	require.NoError(t, monitor.Run(ctx, "ix-bo"))

	report, err := monitor.Status(ctx, "ix-bo")
	require.NoError(t, err)
	assert.Equal(t, "ix-bo", report.Indexer)
	assert.Equal(t, domain.RunInProgress, report.Status)
	assert.False(t, report.Status.Terminal())
}

func TestMonitor_StatusMapping(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)

	tests := []struct {
		name      string
		execution driven.Execution
		want      domain.RunStatus
	}{
		{
			name:      "no end time is in progress",
			execution: driven.Execution{Status: "inProgress", StartTime: start},
			want:      domain.RunInProgress,
		},
		{
			name: "clean success",
			execution: driven.Execution{
				Status: "success", ItemsProcessed: 42,
				StartTime: start, EndTime: end,
			},
			want: domain.RunSucceeded,
		},
		{
			name: "mixed outcome is warnings",
			execution: driven.Execution{
				Status: "transientFailure", ItemsProcessed: 40, ItemsFailed: 2,
				StartTime: start, EndTime: end,
			},
			want: domain.RunSucceededWithWarnings,
		},
		{
			name: "zero processed with failures is failed",
			execution: driven.Execution{
				Status: "persistentFailure", ItemsFailed: 10,
				StartTime: start, EndTime: end,
			},
			want: domain.RunFailed,
		},
		{
			name: "configuration fault is failed",
			execution: driven.Execution{
				Status: "persistentFailure",
				Errors: []driven.ExecutionError{{Message: "data source not found"}},
				StartTime: start, EndTime: end,
			},
			want: domain.RunFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			search := memory.NewSearchService()
			require.NoError(t, search.Upsert(ctx, domain.ResourceIndexer, "ix-bo", map[string]any{"name": "ix-bo"}))
			search.CompleteExecution("ix-bo", tt.execution)

			monitor := NewExecutionMonitor(search)
			report, err := monitor.Status(ctx, "ix-bo")
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Status)
			assert.Equal(t, tt.execution.ItemsProcessed, report.ItemsProcessed)
			assert.Equal(t, tt.execution.ItemsFailed, report.ItemsFailed)
		})
	}
}

func TestMonitor_ErrorTruncation(t *testing.T) {
	ctx := context.Background()
	search := memory.NewSearchService()
	require.NoError(t, search.Upsert(ctx, domain.ResourceIndexer, "ix-bo", map[string]any{"name": "ix-bo"}))

	execution := driven.Execution{
		Status:         "transientFailure",
		ItemsProcessed: 1,
		ItemsFailed:    9,
		StartTime:      time.Now().Add(-time.Minute),
		EndTime:        time.Now(),
	}
	for i := 0; i < 9; i++ {
		execution.Errors = append(execution.Errors, driven.ExecutionError{
			Message: "error " + string(rune('0'+i)),
			Key:     "doc-" + string(rune('0'+i)),
		})
	}
	search.CompleteExecution("ix-bo", execution)

	monitor := NewExecutionMonitor(search)
	report, err := monitor.Status(ctx, "ix-bo")
	require.NoError(t, err)

	// First error verbatim, at most five more.
	assert.Equal(t, "error 0", report.FirstError)
	require.Len(t, report.MoreErrors, domain.MaxReportedErrors)
	assert.Equal(t, "error 1", report.MoreErrors[0])
	assert.Equal(t, "error 5", report.MoreErrors[4])
}

func TestMonitor_LatestExecutionWins(t *testing.T) {
	ctx := context.Background()
	search := memory.NewSearchService()
	require.NoError(t, search.Upsert(ctx, domain.ResourceIndexer, "ix-bo", map[string]any{"name": "ix-bo"}))

	// A failed run, then a successful re-trigger.
	search.CompleteExecution("ix-bo", driven.Execution{
		Status: "persistentFailure", ItemsFailed: 3,
		StartTime: time.Now().Add(-2 * time.Hour),
		EndTime:   time.Now().Add(-time.Hour),
	})
	require.NoError(t, search.Trigger(ctx, "ix-bo"))
	search.CompleteExecution("ix-bo", driven.Execution{
		Status: "success", ItemsProcessed: 12,
		StartTime: time.Now().Add(-10 * time.Minute),
		EndTime:   time.Now(),
	})

	monitor := NewExecutionMonitor(search)
	report, err := monitor.Status(ctx, "ix-bo")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, report.Status)
	assert.Equal(t, 12, report.ItemsProcessed)
}

func TestMonitor_UnknownIndexer(t *testing.T) {
	search := memory.NewSearchService()
	monitor := NewExecutionMonitor(search)

	_, err := monitor.Status(context.Background(), "ix-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/storage/memory"
	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driving"
)

// resetFlags restores every flag to its default so tests do not leak
// flag state through the shared command instances.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// runCommand executes the root command with the given arguments and
// captures its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// setServices installs test doubles for the wired services and restores
// the previous set when the test finishes.
func setServices(t *testing.T, s driving.Syncer, v driving.VerticalManager, m driving.IndexerMonitor, r driven.ResourceClient) {
	t.Helper()
	if r == nil {
		r = memory.NewSearchService()
	}
	prevSyncer, prevVerticals := syncer, verticalManager
	prevMonitor, prevResources := indexerMonitor, resourceClient
	prevSettings := settings
	syncer, verticalManager = s, v
	indexerMonitor, resourceClient = m, r
	settings = nil
	t.Cleanup(func() {
		syncer, verticalManager = prevSyncer, prevVerticals
		indexerMonitor, resourceClient = prevMonitor, prevResources
		settings = prevSettings
	})
}

// fakeSyncer scripts Sync and Reset outcomes.
type fakeSyncer struct {
	summary    *driving.SyncSummary
	syncErr    error
	resetErr   error
	resetCalls int
}

func (f *fakeSyncer) Sync(context.Context) (*driving.SyncSummary, error) {
	return f.summary, f.syncErr
}

func (f *fakeSyncer) Reset(context.Context) error {
	f.resetCalls++
	return f.resetErr
}

// fakeVerticals records the configurations it was asked to apply.
type fakeVerticals struct {
	applied  []domain.VerticalConfig
	states   []domain.ResourceState
	applyErr error

	tornDown    []string
	teardownErr error
}

func (f *fakeVerticals) Apply(_ context.Context, cfg domain.VerticalConfig) ([]domain.ResourceState, error) {
	f.applied = append(f.applied, cfg)
	return f.states, f.applyErr
}

func (f *fakeVerticals) Teardown(_ context.Context, prefix string, _ domain.VerticalKind) ([]domain.ResourceState, error) {
	f.tornDown = append(f.tornDown, prefix)
	return f.states, f.teardownErr
}

// fakeMonitor returns scripted reports, one per Status call.
type fakeMonitor struct {
	reports   []*domain.RunReport
	calls     int
	runErr    error
	statusErr error
	triggered []string
}

func (f *fakeMonitor) Run(_ context.Context, name string) error {
	f.triggered = append(f.triggered, name)
	return f.runErr
}

func (f *fakeMonitor) Status(context.Context, string) (*domain.RunReport, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	report := f.reports[f.calls]
	if f.calls < len(f.reports)-1 {
		f.calls++
	}
	return report, nil
}

// Package cli implements the corpus command-line interface. Commands hold
// no business logic: they parse flags, call the driving ports, and render
// results. Services are wired lazily from the settings file so commands
// that need no remote configuration (version, analyze) work without one.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/config/file"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/search/azure"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/source/graph"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/source/localfs"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/storage/blob"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/storage/sqlite"
	"github.com/orbital-labs/corpus-cli/internal/core/domain"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driven"
	"github.com/orbital-labs/corpus-cli/internal/core/ports/driving"
	"github.com/orbital-labs/corpus-cli/internal/core/services"
	"github.com/orbital-labs/corpus-cli/internal/logger"
)

// Exit codes. Partial failure is distinct so scripted callers can retry a
// sync without treating it as fatal.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitPartial = 3
)

var (
	verbose    bool
	configPath string

	// Services the commands dispatch to. Wired from the settings file on
	// first use; tests inject fakes directly.
	syncer          driving.Syncer
	verticalManager driving.VerticalManager
	indexerMonitor  driving.IndexerMonitor
	advisor         driving.Advisor = services.NewCategorizationAdvisor()
	resourceClient  driven.ResourceClient

	// settings is the loaded configuration, kept so commands can resolve
	// declared verticals by prefix.
	settings *file.Settings
)

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Sync documents into durable storage and manage search pipelines",
	Long: `corpus synchronises content from a remote document source into durable
storage and declaratively manages the search-indexing pipelines built on
top of it. Each pipeline ("vertical") is a data source, skillset, index
and indexer derived from a single prefix.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.corpus/config.toml)")
}

// Execute runs the root command and maps the result to an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, domain.ErrPartialFailure) {
			return ExitPartial
		}
		return ExitError
	}
	return ExitOK
}

// ensureServices wires the full service stack from the settings file. A
// no-op when tests have already injected services.
func ensureServices() error {
	if syncer != nil && verticalManager != nil && indexerMonitor != nil && resourceClient != nil {
		return nil
	}

	if err := loadSettings(); err != nil {
		return err
	}

	records, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}

	source, err := newSource(settings)
	if err != nil {
		return fmt.Errorf("configuring source: %w", err)
	}

	objects, err := blob.NewStore(settings.Storage)
	if err != nil {
		return fmt.Errorf("configuring storage: %w", err)
	}

	search, err := azure.NewClient(settings.Search)
	if err != nil {
		return fmt.Errorf("configuring search: %w", err)
	}

	builder, err := azure.NewBuilder(settings.Pipeline)
	if err != nil {
		return fmt.Errorf("configuring pipeline builder: %w", err)
	}

	var stagerOpts []services.StagerOption
	if settings.Sync.RetryAttempts > 0 {
		stagerOpts = append(stagerOpts, services.WithRetries(settings.Sync.RetryAttempts))
	}
	stager := services.NewContentStager(source, objects, stagerOpts...)
	tracker := services.NewChangeTracker(source)

	var syncOpts []services.SyncOption
	if settings.Sync.Concurrency > 0 {
		syncOpts = append(syncOpts, services.WithConcurrency(settings.Sync.Concurrency))
	}

	syncer = services.NewSyncOrchestrator(source, tracker, stager, records, syncOpts...)
	verticalManager = services.NewVerticalManager(builder, search, search, records)
	indexerMonitor = services.NewExecutionMonitor(search)
	resourceClient = search
	return nil
}

// newSource returns the configured content source: the local directory
// walk when one is declared, otherwise the remote document source.
func newSource(s *file.Settings) (driven.ContentSource, error) {
	if s.LocalSource.Root != "" {
		return localfs.NewSource(s.LocalSource)
	}
	return graph.NewSource(s.Source)
}

// loadSettings reads and validates the settings file, preferring the
// --config flag over the default location.
func loadSettings() error {
	if settings != nil {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return err
		}
	}

	loaded, err := file.Load(path)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	settings = loaded
	return nil
}

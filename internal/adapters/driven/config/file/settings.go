package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/search/azure"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/source/graph"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/source/localfs"
	"github.com/orbital-labs/corpus-cli/internal/adapters/driven/storage/blob"
	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

// DefaultFileName is the settings file looked up when no path is given.
const DefaultFileName = "config.toml"

// SyncSettings tunes the synchronisation run.
type SyncSettings struct {
	// Concurrency is the staging worker pool size. Zero means default.
	Concurrency int `toml:"concurrency"`

	// RetryAttempts is the per-call retry budget for transient failures.
	// Zero means default.
	RetryAttempts int `toml:"retry_attempts"`
}

// Settings is the closed configuration schema. Unknown keys are rejected
// at load time rather than silently ignored.
type Settings struct {
	// DataDir is where local state (the record database) lives. Empty
	// means ~/.corpus/data.
	DataDir string `toml:"data_dir"`

	Source graph.Config `toml:"source"`

	// LocalSource, when its root is set, replaces the remote source with
	// a local directory walk. Useful for development and for corpora
	// already on disk.
	LocalSource localfs.Config `toml:"local_source"`

	Storage  blob.Config         `toml:"storage"`
	Search   azure.Config        `toml:"search"`
	Pipeline azure.BuilderConfig `toml:"pipeline"`
	Sync     SyncSettings        `toml:"sync"`

	// Verticals are the declared pipeline configurations, keyed by
	// prefix for the apply and teardown commands.
	Verticals []domain.VerticalConfig `toml:"verticals"`
}

// DefaultPath returns the default settings location,
// ~/.corpus/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".corpus", DefaultFileName), nil
}

// Load reads and validates settings from a TOML file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	settings := &Settings{}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(settings); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: unknown keys in %s:\n%s", domain.ErrInvalidInput, path, strict.String())
		}
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidInput, path, err)
	}

	settings.applyEnv()

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return settings, nil
}

// applyEnv overlays credentials from the environment so secrets can stay
// out of the file. A set variable wins over the file value.
func (s *Settings) applyEnv() {
	overlay := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	overlay(&s.Source.ClientSecret, "CORPUS_CLIENT_SECRET")
	overlay(&s.Storage.SASToken, "CORPUS_SAS_TOKEN")
	overlay(&s.Search.APIKey, "CORPUS_SEARCH_API_KEY")
	overlay(&s.Pipeline.OpenAIAPIKey, "CORPUS_OPENAI_API_KEY")
	overlay(&s.Pipeline.StorageConnectionString, "CORPUS_STORAGE_CONNECTION_STRING")
}

// Validate cross-checks the declared verticals. Adapter configurations
// validate themselves when their adapters are constructed, so commands
// that never touch a backend still run with a partial file.
func (s *Settings) Validate() error {
	seen := make(map[string]bool, len(s.Verticals))
	for i := range s.Verticals {
		vertical := &s.Verticals[i]
		if err := vertical.Validate(); err != nil {
			return fmt.Errorf("vertical %d: %w", i, err)
		}
		if seen[vertical.Prefix] {
			return fmt.Errorf("%w: duplicate vertical prefix %q", domain.ErrInvalidInput, vertical.Prefix)
		}
		seen[vertical.Prefix] = true
	}
	return nil
}

// Vertical returns the declared configuration for a prefix, or
// domain.ErrNotFound.
func (s *Settings) Vertical(prefix string) (*domain.VerticalConfig, error) {
	for i := range s.Verticals {
		if s.Verticals[i].Prefix == prefix {
			return &s.Verticals[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no vertical %q in settings", domain.ErrNotFound, prefix)
}

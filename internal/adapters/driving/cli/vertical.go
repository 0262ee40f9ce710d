package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

var (
	applyKind      string
	applyContainer string
	applyChunkSize int
	applyOverlap   int

	deleteKind string
)

var applyVerticalCmd = &cobra.Command{
	Use:   "apply-vertical <prefix>",
	Short: "Create or update a search pipeline for a prefix",
	Long: `Apply-vertical provisions the four pipeline resources (data source,
skillset, index, indexer) derived from the prefix, in dependency order,
then triggers one indexer run. Applying an unchanged configuration is a
no-op. Flags override the matching vertical declared in the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		if verticalManager == nil {
			return errors.New("vertical service not configured")
		}

		cfg, err := resolveVertical(cmd, args[0])
		if err != nil {
			return err
		}

		states, err := verticalManager.Apply(cmd.Context(), cfg)
		printResourceStates(cmd, states)
		if err != nil {
			return fmt.Errorf("applying vertical %q: %w", cfg.Prefix, err)
		}
		cmd.Printf("Vertical %q applied; indexer run triggered.\n", cfg.Prefix)
		return nil
	},
}

var deleteVerticalCmd = &cobra.Command{
	Use:   "delete-vertical <prefix>",
	Short: "Tear down the search pipeline for a prefix",
	Long: `Delete-vertical removes the four pipeline resources in reverse
dependency order. Deletion is best-effort: missing resources count as
already absent, and a failure on one resource does not stop the rest.
Staged content in durable storage is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		if verticalManager == nil {
			return errors.New("vertical service not configured")
		}

		prefix := args[0]
		kind, err := domain.ParseVerticalKind(deleteKind)
		if err != nil {
			return err
		}

		states, err := verticalManager.Teardown(cmd.Context(), prefix, kind)
		printResourceStates(cmd, states)
		if err != nil {
			return fmt.Errorf("tearing down vertical %q: %w", prefix, err)
		}
		cmd.Printf("Vertical %q torn down.\n", prefix)
		return nil
	},
}

// resolveVertical builds the configuration for a prefix: the declaration
// from the config file when one exists, overridden by any flags set on
// the command.
func resolveVertical(cmd *cobra.Command, prefix string) (domain.VerticalConfig, error) {
	cfg := domain.VerticalConfig{Prefix: prefix, Kind: domain.KindGeneral}
	if settings != nil {
		if declared, err := settings.Vertical(prefix); err == nil {
			cfg = *declared
		}
	}

	if cmd.Flags().Changed("kind") {
		kind, err := domain.ParseVerticalKind(applyKind)
		if err != nil {
			return cfg, err
		}
		cfg.Kind = kind
	}
	if cmd.Flags().Changed("container") {
		cfg.Container = applyContainer
	}
	if cmd.Flags().Changed("chunk-size") {
		cfg.ChunkSize = applyChunkSize
	}
	if cmd.Flags().Changed("overlap") {
		cfg.Overlap = applyOverlap
	}
	return cfg, nil
}

func printResourceStates(cmd *cobra.Command, states []domain.ResourceState) {
	for _, s := range states {
		if s.Err != nil {
			cmd.Printf("  %-10s %-24s %s: %v\n", s.Type, s.Name, s.Action, s.Err)
			continue
		}
		cmd.Printf("  %-10s %-24s %s\n", s.Type, s.Name, s.Action)
	}
}

func init() {
	applyVerticalCmd.Flags().StringVar(&applyKind, "kind", string(domain.KindGeneral), "pipeline kind (general or structured)")
	applyVerticalCmd.Flags().StringVar(&applyContainer, "container", "", "durable-storage container the data source reads")
	applyVerticalCmd.Flags().IntVar(&applyChunkSize, "chunk-size", 0, "chunk size in characters (0 uses the pipeline default)")
	applyVerticalCmd.Flags().IntVar(&applyOverlap, "overlap", 0, "chunk overlap in characters")
	deleteVerticalCmd.Flags().StringVar(&deleteKind, "kind", string(domain.KindGeneral), "pipeline kind (general or structured)")
	rootCmd.AddCommand(applyVerticalCmd)
	rootCmd.AddCommand(deleteVerticalCmd)
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

var syncReset bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise the remote source into durable storage",
	Long: `Sync computes the change set since the last run, stages added and
modified items into durable storage, removes deleted ones, and records the
new cursor. The first run (or a run after --reset) performs a full scan.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		if syncer == nil {
			return errors.New("sync service not configured")
		}

		ctx := cmd.Context()
		if syncReset {
			if err := syncer.Reset(ctx); err != nil {
				return fmt.Errorf("resetting sync state: %w", err)
			}
			cmd.Println("Sync state reset; next run performs a full scan.")
		}

		summary, err := syncer.Sync(ctx)
		if summary != nil {
			cmd.Printf("Run %s (source %s)\n", summary.RunID, summary.SourceID)
			cmd.Printf("  staged:    %d\n", summary.Staged)
			cmd.Printf("  skipped:   %d\n", summary.Skipped)
			cmd.Printf("  deleted:   %d\n", summary.Deleted)
			cmd.Printf("  unchanged: %d\n", summary.Unchanged)
			if summary.Failed() > 0 {
				cmd.Printf("  failed:    %d\n", summary.Failed())
				shown := summary.Failures
				if len(shown) > domain.MaxReportedErrors {
					shown = shown[:domain.MaxReportedErrors]
				}
				for _, f := range shown {
					cmd.Printf("    %s: %v\n", f.Path, f.Err)
				}
				if rest := summary.Failed() - len(shown); rest > 0 {
					cmd.Printf("    ... and %d more\n", rest)
				}
			}
			if !summary.CursorAdvanced {
				cmd.Println("  cursor not advanced; the next run revisits this batch")
			}
		}
		return err
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncReset, "reset", false, "discard the cursor and item records before syncing")
	rootCmd.AddCommand(syncCmd)
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

var (
	statusWait     bool
	statusInterval time.Duration
	statusTimeout  time.Duration
)

var runIndexerCmd = &cobra.Command{
	Use:   "run-indexer <name>",
	Short: "Trigger one execution of an indexer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		if indexerMonitor == nil {
			return errors.New("indexer service not configured")
		}

		name := args[0]
		if err := indexerMonitor.Run(cmd.Context(), name); err != nil {
			return fmt.Errorf("triggering indexer %q: %w", name, err)
		}
		cmd.Printf("Indexer %q triggered.\n", name)
		return nil
	},
}

var indexerStatusCmd = &cobra.Command{
	Use:   "indexer-status <name>",
	Short: "Report the most recent execution of an indexer",
	Long: `Indexer-status maps the indexer's latest execution into a normalized
report. With --wait the command polls until the execution reaches a
terminal state or the timeout elapses.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		if indexerMonitor == nil {
			return errors.New("indexer service not configured")
		}

		ctx := cmd.Context()
		name := args[0]

		report, err := indexerMonitor.Status(ctx, name)
		if err != nil {
			return fmt.Errorf("fetching status of indexer %q: %w", name, err)
		}

		if statusWait {
			deadline := time.Now().Add(statusTimeout)
			for !report.Status.Terminal() {
				if time.Now().After(deadline) {
					printRunReport(cmd, report)
					return fmt.Errorf("indexer %q still running after %s", name, statusTimeout)
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(statusInterval):
				}
				report, err = indexerMonitor.Status(ctx, name)
				if err != nil {
					return fmt.Errorf("fetching status of indexer %q: %w", name, err)
				}
			}
		}

		printRunReport(cmd, report)
		if report.Status == domain.RunFailed {
			return fmt.Errorf("indexer %q failed", name)
		}
		return nil
	},
}

func printRunReport(cmd *cobra.Command, r *domain.RunReport) {
	cmd.Printf("Indexer %s: %s\n", r.Indexer, r.Status)
	cmd.Printf("  processed: %d\n", r.ItemsProcessed)
	cmd.Printf("  failed:    %d\n", r.ItemsFailed)
	if !r.StartTime.IsZero() {
		cmd.Printf("  started:   %s\n", r.StartTime.Format(time.RFC3339))
	}
	if !r.EndTime.IsZero() {
		cmd.Printf("  ended:     %s\n", r.EndTime.Format(time.RFC3339))
	}
	if r.FirstError != "" {
		cmd.Printf("  first error: %s\n", r.FirstError)
		for _, msg := range r.MoreErrors {
			cmd.Printf("    %s\n", msg)
		}
	}
}

func init() {
	indexerStatusCmd.Flags().BoolVar(&statusWait, "wait", false, "poll until the execution reaches a terminal state")
	indexerStatusCmd.Flags().DurationVar(&statusInterval, "interval", 5*time.Second, "polling interval with --wait")
	indexerStatusCmd.Flags().DurationVar(&statusTimeout, "timeout", 10*time.Minute, "polling timeout with --wait")
	rootCmd.AddCommand(runIndexerCmd)
	rootCmd.AddCommand(indexerStatusCmd)
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path> [path...]",
	Short: "Classify local files and suggest vertical configurations",
	Long: `Analyze walks the given directories, classifies every regular file by
extension, and proposes vertical configurations ranked by file count.
Purely local: no network or storage access.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if advisor == nil {
			return errors.New("advisor not configured")
		}

		report, err := advisor.Analyze(args)
		if err != nil {
			return fmt.Errorf("analyzing paths: %w", err)
		}

		cmd.Printf("Scanned %d files (%s)\n", report.TotalFiles, formatSize(report.TotalSize))
		for _, w := range report.Warnings {
			cmd.Printf("  warning: %s\n", w)
		}
		for _, s := range report.Stats {
			cmd.Printf("  %-13s %6d files  %10s  %s\n",
				s.Category, s.FileCount, formatSize(s.TotalSize), strings.Join(s.Extensions, " "))
		}

		suggestions := advisor.SuggestVerticals(report)
		if len(suggestions) == 0 {
			cmd.Println("No vertical suggestions.")
			return nil
		}

		cmd.Println("\nSuggested verticals:")
		for _, s := range suggestions {
			cmd.Printf("  %s (%s): %d files, chunk size %d, overlap %d\n",
				s.SuggestedPrefix, s.Category, s.FileCount, s.ChunkSize, s.Overlap)
			if s.Description != "" {
				cmd.Printf("    %s\n", s.Description)
			}
		}
		return nil
	},
}

// formatSize renders a byte count with a binary unit suffix.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

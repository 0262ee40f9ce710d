package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orbital-labs/corpus-cli/internal/core/domain"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the search service's pipeline resources",
	Long: `Resources enumerates every data source, skillset, index and indexer on
the search service, including resources not managed by this tool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		if resourceClient == nil {
			return errors.New("search client not configured")
		}

		ctx := cmd.Context()
		for _, typ := range domain.CreationOrder {
			names, err := resourceClient.List(ctx, typ)
			if err != nil {
				return fmt.Errorf("listing %s: %w", collectionName(typ), err)
			}
			cmd.Printf("%s (%d):\n", collectionName(typ), len(names))
			for _, name := range names {
				cmd.Printf("  %s\n", name)
			}
		}
		return nil
	},
}

// collectionName is the plural collection a resource type lives in.
func collectionName(typ domain.ResourceType) string {
	switch typ {
	case domain.ResourceDataSource:
		return "datasources"
	case domain.ResourceSkillset:
		return "skillsets"
	case domain.ResourceIndex:
		return "indexes"
	case domain.ResourceIndexer:
		return "indexers"
	}
	return string(typ)
}

func init() {
	rootCmd.AddCommand(resourcesCmd)
}

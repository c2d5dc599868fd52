package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar <query>",
	Short: "Find developers by free-text similarity search",
	Long: `Searches the vector index for developers whose indexed profile is
similar to the query text. Requires OPENAI_API_KEY so the index can
embed the query.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		snapshots, _ := cmd.Flags().GetString("snapshots")
		limit, _ := cmd.Flags().GetInt("limit")

		if _, err := app.loadSnapshots(cmd.Context(), snapshots); err != nil {
			return err
		}

		hits, err := app.service.SimilarDevelopers(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return fmt.Errorf("similar developers: %w", err)
		}
		return printJSON(hits)
	},
}

func init() {
	similarCmd.Flags().String("snapshots", "snapshots.json", "path to developer/project snapshot file")
	similarCmd.Flags().Int("limit", 0, "max results (0 = configured default)")
}

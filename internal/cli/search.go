package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/devmatch/internal/match"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Advanced developer search with explicit filters and weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		snapshots, _ := cmd.Flags().GetString("snapshots")
		projectID, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")

		if _, err := app.loadSnapshots(cmd.Context(), snapshots); err != nil {
			return err
		}

		project, err := app.service.Project(projectID)
		if err != nil {
			return err
		}

		filters := match.Filters{}
		filters.MinAvailability, _ = cmd.Flags().GetFloat64("min-availability")
		filters.MinReputation, _ = cmd.Flags().GetFloat64("min-reputation")
		filters.MaxHourlyRate, _ = cmd.Flags().GetFloat64("max-rate")
		filters.MustHaveSkills, _ = cmd.Flags().GetStringSlice("must-have")

		var weights *match.Weights
		if cmd.Flags().Changed("weights") {
			raw, _ := cmd.Flags().GetFloat64Slice("weights")
			if len(raw) != 4 {
				return fmt.Errorf("--weights needs 4 values: vector,graph,availability,reputation")
			}
			weights = &match.Weights{Vector: raw[0], Graph: raw[1], Availability: raw[2], Reputation: raw[3]}
		}

		result, err := app.service.AdvancedSearch(cmd.Context(), project, filters, weights, limit)
		if err != nil {
			return fmt.Errorf("advanced search: %w", err)
		}
		return printJSON(result)
	},
}

func init() {
	searchCmd.Flags().String("snapshots", "snapshots.json", "path to developer/project snapshot file")
	searchCmd.Flags().String("project", "", "project id to search for")
	_ = searchCmd.MarkFlagRequired("project")
	searchCmd.Flags().Int("limit", 0, "max results (0 = configured default)")
	searchCmd.Flags().Float64("min-availability", 0, "minimum availability fraction")
	searchCmd.Flags().Float64("min-reputation", 0, "minimum reputation (0-5)")
	searchCmd.Flags().Float64("max-rate", 0, "maximum hourly rate")
	searchCmd.Flags().StringSlice("must-have", nil, "skills a candidate must hold")
	searchCmd.Flags().Float64Slice("weights", nil, "custom fusion weights: vector,graph,availability,reputation")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Assemble a team covering a project's required skills",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		snapshots, _ := cmd.Flags().GetString("snapshots")
		projectID, _ := cmd.Flags().GetString("project")
		size, _ := cmd.Flags().GetInt("size")

		if _, err := app.loadSnapshots(cmd.Context(), snapshots); err != nil {
			return err
		}

		project, err := app.service.Project(projectID)
		if err != nil {
			return err
		}

		team, err := app.service.FindOptimalTeam(project.RequiredSkills, size)
		if err != nil {
			return fmt.Errorf("find team: %w", err)
		}
		return printJSON(team)
	},
}

func init() {
	teamCmd.Flags().String("snapshots", "snapshots.json", "path to developer/project snapshot file")
	teamCmd.Flags().String("project", "", "project id whose skills to cover")
	_ = teamCmd.MarkFlagRequired("project")
	teamCmd.Flags().Int("size", 3, "maximum team size")
}

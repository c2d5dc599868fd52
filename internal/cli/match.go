package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank candidates for a project or developer",
}

var matchDevelopersCmd = &cobra.Command{
	Use:   "developers",
	Short: "Rank developers for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		snapshots, _ := cmd.Flags().GetString("snapshots")
		projectID, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")
		analysis, _ := cmd.Flags().GetBool("analysis")

		if _, err := app.loadSnapshots(cmd.Context(), snapshots); err != nil {
			return err
		}

		project, err := app.service.Project(projectID)
		if err != nil {
			return err
		}

		result, err := app.service.FindMatchingDevelopers(cmd.Context(), project, limit, analysis)
		if err != nil {
			return fmt.Errorf("match developers: %w", err)
		}
		return printJSON(result)
	},
}

var matchProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Rank projects for a developer",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		snapshots, _ := cmd.Flags().GetString("snapshots")
		developerID, _ := cmd.Flags().GetString("developer")
		limit, _ := cmd.Flags().GetInt("limit")
		analysis, _ := cmd.Flags().GetBool("analysis")

		if _, err := app.loadSnapshots(cmd.Context(), snapshots); err != nil {
			return err
		}

		dev, err := app.service.Developer(developerID)
		if err != nil {
			return err
		}

		result, err := app.service.FindMatchingProjects(cmd.Context(), dev, limit, analysis)
		if err != nil {
			return fmt.Errorf("match projects: %w", err)
		}
		return printJSON(result)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{matchDevelopersCmd, matchProjectsCmd} {
		cmd.Flags().String("snapshots", "snapshots.json", "path to developer/project snapshot file")
		cmd.Flags().Int("limit", 0, "max results (0 = configured default)")
		cmd.Flags().Bool("analysis", false, "include per-skill graph breakdown")
	}
	matchDevelopersCmd.Flags().String("project", "", "project id to match against")
	_ = matchDevelopersCmd.MarkFlagRequired("project")
	matchProjectsCmd.Flags().String("developer", "", "developer id to match against")
	_ = matchProjectsCmd.MarkFlagRequired("developer")

	matchCmd.AddCommand(matchDevelopersCmd)
	matchCmd.AddCommand(matchProjectsCmd)
}

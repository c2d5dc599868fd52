package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/devmatch/internal/feedback"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record feedback for a served match",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		matchID, _ := cmd.Flags().GetString("match")
		candidateID, _ := cmd.Flags().GetString("candidate")
		rating, _ := cmd.Flags().GetInt("rating")
		corrections, _ := cmd.Flags().GetStringSlice("correct-skills")

		receipt, err := app.service.ProvideFeedback(matchID, feedback.Input{
			Rating:                    rating,
			CandidateID:               candidateID,
			SuggestedSkillCorrections: corrections,
		})
		if err != nil {
			return fmt.Errorf("record feedback: %w", err)
		}
		return printJSON(receipt)
	},
}

var feedbackRecalcCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Fold recent feedback into skill confidence snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		window, _ := cmd.Flags().GetDuration("window")
		updated, err := app.service.RecalculateConfidence(window)
		if err != nil {
			return fmt.Errorf("recalculate confidence: %w", err)
		}
		fmt.Printf("updated confidence for %d skills\n", updated)
		return nil
	},
}

func init() {
	feedbackCmd.Flags().String("match", "", "match id the feedback refers to")
	_ = feedbackCmd.MarkFlagRequired("match")
	feedbackCmd.Flags().String("candidate", "", "candidate id involved in the match")
	feedbackCmd.Flags().Int("rating", 0, "rating 1-5")
	_ = feedbackCmd.MarkFlagRequired("rating")
	feedbackCmd.Flags().StringSlice("correct-skills", nil, "skills the match mis-scored")

	feedbackRecalcCmd.Flags().Duration("window", 7*24*time.Hour, "feedback window to fold in")
	feedbackCmd.AddCommand(feedbackRecalcCmd)
}

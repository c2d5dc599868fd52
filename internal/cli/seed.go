package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// seedFile is the on-disk format for skill graph seeds.
type seedFile struct {
	Nodes []struct {
		Name       string  `json:"name"`
		Category   string  `json:"category"`
		Popularity float64 `json:"popularity"`
	} `json:"nodes"`
	Relationships []struct {
		From   string  `json:"from"`
		To     string  `json:"to"`
		Kind   string  `json:"kind"`
		Weight float64 `json:"weight"`
	} `json:"relationships"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the skill graph from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		path, _ := cmd.Flags().GetString("file")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read seed file: %w", err)
		}

		var seed seedFile
		if err := json.Unmarshal(data, &seed); err != nil {
			return fmt.Errorf("parse seed file: %w", err)
		}

		for _, n := range seed.Nodes {
			if err := app.service.UpsertSkillNode(n.Name, n.Category, n.Popularity); err != nil {
				return fmt.Errorf("seed node %s: %w", n.Name, err)
			}
		}
		for _, r := range seed.Relationships {
			if err := app.service.UpsertSkillRelationship(r.From, r.To, r.Kind, r.Weight); err != nil {
				return fmt.Errorf("seed relationship %s->%s: %w", r.From, r.To, err)
			}
		}

		telemetryClient.TrackGraphSeeded(len(seed.Nodes), len(seed.Relationships))
		fmt.Printf("seeded %d nodes and %d relationships\n", len(seed.Nodes), len(seed.Relationships))
		return nil
	},
}

func init() {
	seedCmd.Flags().String("file", "skills.json", "path to the skill graph seed file")
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the match cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache counters and hit efficiency",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		stats, err := app.service.CacheStatistics()
		if err != nil {
			return fmt.Errorf("cache stats: %w", err)
		}
		return printJSON(stats)
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete entries past their TTL",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		removed, err := app.service.CleanupExpiredCache()
		if err != nil {
			return fmt.Errorf("cache cleanup: %w", err)
		}
		fmt.Printf("removed %d expired entries\n", removed)
		return nil
	},
}

var cacheOptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Evict expired and cold entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			return err
		}
		defer app.close()

		report, err := app.service.OptimizeCachePerformance()
		if err != nil {
			return fmt.Errorf("cache optimize: %w", err)
		}
		return printJSON(report)
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheOptimizeCmd)
}

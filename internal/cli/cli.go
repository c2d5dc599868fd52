// Package cli provides the command-line interface for devmatch.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/asteroid-belt/devmatch/internal/cache"
	"github.com/asteroid-belt/devmatch/internal/config"
	"github.com/asteroid-belt/devmatch/internal/db"
	"github.com/asteroid-belt/devmatch/internal/embedding"
	"github.com/asteroid-belt/devmatch/internal/feedback"
	"github.com/asteroid-belt/devmatch/internal/graph"
	applog "github.com/asteroid-belt/devmatch/internal/log"
	"github.com/asteroid-belt/devmatch/internal/match"
	"github.com/asteroid-belt/devmatch/internal/service"
	"github.com/asteroid-belt/devmatch/internal/telemetry"
	"github.com/asteroid-belt/devmatch/internal/vector"
	"github.com/asteroid-belt/devmatch/pkg/version"
)

var telemetryClient telemetry.Client

var rootCmd = &cobra.Command{
	Use:   "devmatch",
	Short: "Hybrid developer/project matching engine",
	Long: `devmatch ranks developers against project requirements (and projects
against developer profiles) by fusing semantic vector similarity,
skill-graph compatibility, availability and reputation, serving
repeated queries from a TTL cache.

Telemetry:
  Telemetry is enabled by default, always anonymous, and will never
  track profile contents or query text.

  Opt-out with:
  	DEVMATCH_TELEMETRY_TRACKING_ENABLED=false`,
	SilenceUsage: true,
	Version:      version.Short(),
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "verbose logging")
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(seedCmd)
}

// Execute runs the CLI.
func Execute(ctx context.Context, tc telemetry.Client) error {
	if tc == nil {
		tc = telemetry.New()
	}
	telemetryClient = tc
	defer telemetryClient.Close()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads env configuration and overlays the optional YAML
// config file through viper.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(config.GetPaths(cfg).Config)
	if err := v.ReadInConfig(); err == nil {
		if model := v.GetString("embedding.model"); model != "" {
			cfg.Embedding.Model = model
		}
		if ttl := v.GetDuration("cache.ttl"); ttl > 0 {
			cfg.CacheTTL = ttl
		}
		if limit := v.GetInt("match.default_limit"); limit > 0 {
			cfg.DefaultLimit = limit
		}
		if conc := v.GetInt("match.max_concurrency"); conc > 0 {
			cfg.MaxConcurrency = conc
		}
	} else if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
		if _, statErr := os.Stat(config.GetPaths(cfg).Config); statErr == nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// app bundles everything a command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *db.DB
	service *service.Service
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// setup wires the full engine: database, embedding service, skill
// graph, ranking engine, cache and feedback loop.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := applog.New(cfg.Debug)
	if err != nil {
		return nil, err
	}

	paths := config.GetPaths(cfg)
	database, err := db.New(db.Config{
		Path:        paths.Database,
		Debug:       cfg.Debug,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	provider := embedding.NewOpenAI(cfg.OpenAIKey, cfg.Embedding.Model, cfg.Embedding.RateLimit, 10*time.Second)
	embedSvc, err := embedding.NewService(provider, database, cfg.Embedding, logger)
	if err != nil {
		return nil, err
	}

	graphSvc, err := graph.NewService(database, logger)
	if err != nil {
		return nil, err
	}

	matchCache := cache.New(database, cache.Config{
		DefaultTTL: cfg.CacheTTL,
		MinHits:    cfg.CacheMinHits,
		MinAge:     cfg.CacheMinAge,
	}, logger)

	engine := match.NewEngine(embedSvc, graphSvc, logger)
	feedbackSvc := feedback.New(database, matchCache, graphSvc, logger)

	svc := service.New(engine, matchCache, feedbackSvc, graphSvc, telemetryClient, service.Config{
		CacheTTL:       cfg.CacheTTL,
		DefaultLimit:   cfg.DefaultLimit,
		MaxConcurrency: cfg.MaxConcurrency,
	}, logger)

	if cfg.VectorIndexEnabled {
		index, err := vector.New(vector.Config{
			DataDir:   paths.Vectors,
			OpenAIKey: cfg.OpenAIKey,
			Model:     cfg.Embedding.Model,
		})
		if err != nil {
			logger.Warn("vector index unavailable, continuing without it", zap.Error(err))
		} else {
			svc.SetVectorIndex(index)
		}
	}

	return &app{cfg: cfg, logger: logger, db: database, service: svc}, nil
}

// Package config handles application configuration management.
package config

import (
	"os"
	"time"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all devmatch data (~/.devmatch)
	BaseDir string

	// Embedding model settings
	Embedding models.EmbeddingConfig

	// OpenAI API key for the embedding model (OPENAI_API_KEY env var)
	OpenAIKey string

	// VectorIndexEnabled toggles the chromem-go similarity index
	// (default: false until API key set)
	VectorIndexEnabled bool

	// Cache settings
	CacheTTL     time.Duration
	CacheMinHits int64
	CacheMinAge  time.Duration

	// Matching settings
	DefaultLimit   int
	MaxConcurrency int

	// Debug enables verbose logging and SQL echo.
	Debug bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:        DefaultBaseDir(),
		Embedding:      models.DefaultEmbeddingConfig(),
		CacheTTL:       15 * time.Minute,
		CacheMinHits:   2,
		CacheMinAge:    time.Hour,
		DefaultLimit:   10,
		MaxConcurrency: 8,
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv("DEVMATCH_HOME"); dir != "" {
		cfg.BaseDir = dir
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.OpenAIKey = apiKey
		cfg.VectorIndexEnabled = true
	}

	if model := os.Getenv("DEVMATCH_EMBEDDING_MODEL"); model != "" {
		cfg.Embedding.Model = model
		if dim, ok := models.EmbeddingModelDimensions[model]; ok {
			cfg.Embedding.Dimension = dim
		}
	}

	if ttl := os.Getenv("DEVMATCH_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}

	if os.Getenv("DEVMATCH_DEBUG") == "true" {
		cfg.Debug = true
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ensureDirectories creates required directories if they don't exist.
func ensureDirectories(cfg *Config) error {
	dirs := []string{
		cfg.BaseDir,
		GetPaths(cfg).Vectors,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

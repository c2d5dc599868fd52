package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, int64(2), cfg.CacheMinHits)
	assert.Equal(t, time.Hour, cfg.CacheMinAge)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.Equal(t, 8, cfg.MaxConcurrency)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.False(t, cfg.VectorIndexEnabled)
	assert.False(t, cfg.Debug)
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DEVMATCH_HOME", home)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEVMATCH_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("DEVMATCH_CACHE_TTL", "30m")
	t.Setenv("DEVMATCH_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, home, cfg.BaseDir)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.True(t, cfg.VectorIndexEnabled)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedding.Model)
	assert.Equal(t, 3072, cfg.Embedding.Dimension)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.Debug)
}

func TestLoad_BadTTLKeepsDefault(t *testing.T) {
	t.Setenv("DEVMATCH_HOME", t.TempDir())
	t.Setenv("DEVMATCH_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
}

func TestLoad_CreatesDirectories(t *testing.T) {
	home := filepath.Join(t.TempDir(), "nested", "devmatch")
	t.Setenv("DEVMATCH_HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	for _, dir := range []string{cfg.BaseDir, GetPaths(cfg).Vectors} {
		info, err := os.Stat(dir)
		require.NoError(t, err, "directory %s must exist", dir)
		assert.True(t, info.IsDir())
	}
}

func TestGetPaths(t *testing.T) {
	cfg := &Config{BaseDir: "/tmp/devmatch"}
	paths := GetPaths(cfg)

	assert.Equal(t, filepath.Join("/tmp/devmatch", "devmatch.db"), paths.Database)
	assert.Equal(t, filepath.Join("/tmp/devmatch", "vectors"), paths.Vectors)
	assert.Equal(t, filepath.Join("/tmp/devmatch", "config.yaml"), paths.Config)
}

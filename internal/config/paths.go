package config

import (
	"os"
	"path/filepath"
)

// Paths contains commonly used file paths.
type Paths struct {
	Database string // Main SQLite database
	Vectors  string // chromem-go vector persistence directory
	Config   string // Config file
	Logs     string // Log directory
}

// GetPaths returns all commonly used paths based on config.
func GetPaths(cfg *Config) Paths {
	return Paths{
		Database: filepath.Join(cfg.BaseDir, "devmatch.db"),
		Vectors:  filepath.Join(cfg.BaseDir, "vectors"),
		Config:   filepath.Join(cfg.BaseDir, "config.yaml"),
		Logs:     filepath.Join(cfg.BaseDir, "logs"),
	}
}

// DefaultBaseDir returns the default base directory (~/.devmatch).
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".devmatch"
	}
	return filepath.Join(home, ".devmatch")
}

// Package vector provides the candidate vector index used for pool
// selection: developers and projects are embedded and stored so that a
// requirement text can pull back the most similar candidates.
package vector

import (
	"context"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// Index abstracts vector storage with built-in embedding support.
type Index interface {
	// AddDeveloper embeds and stores a developer profile.
	// Returns the content hash used for staleness checks.
	AddDeveloper(ctx context.Context, dev *models.Developer) (contentHash string, err error)

	// AddProject embeds and stores a project's requirement text.
	AddProject(ctx context.Context, project *models.Project) (contentHash string, err error)

	// SearchDevelopers finds developers similar to the query text.
	SearchDevelopers(ctx context.Context, query string, limit int, threshold float32) ([]Hit, error)

	// SearchProjects finds projects similar to the query text.
	SearchProjects(ctx context.Context, query string, limit int, threshold float32) ([]Hit, error)

	// Delete removes an entity's vectors by id.
	Delete(ctx context.Context, entityType, id string) error

	// Count returns indexed entity counts by type.
	Count(ctx context.Context, entityType string) (int64, error)

	// Close releases resources.
	Close() error
}

// Hit is a search result with similarity score.
type Hit struct {
	EntityID    string
	Score       float32 // Cosine similarity (0.0-1.0)
	ContentHash string
}

// Config holds vector index configuration.
type Config struct {
	// DataDir is where chromem-go persists vectors (default: ~/.devmatch/vectors)
	DataDir string

	// OpenAI settings for embeddings
	OpenAIKey string
	Model     string // default: "text-embedding-3-small"
}

// New creates an Index using chromem-go.
func New(cfg Config) (Index, error) {
	return NewChromemIndex(cfg)
}

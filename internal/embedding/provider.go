// Package embedding turns text into fixed-dimension vectors, caching
// results by normalized-text key and degrading gracefully when the
// external model is unavailable.
package embedding

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable indicates the external model failed or timed
// out. Callers degrade the affected score component to zero instead of
// aborting the request.
var ErrEmbeddingUnavailable = errors.New("embedding unavailable")

// Provider defines the interface for generating text embeddings.
type Provider interface {
	// Embed generates an embedding for a single text string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple text strings.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelVersion identifies the model; embeddings from different
	// versions are never compared against each other.
	ModelVersion() string
}

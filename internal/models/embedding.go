package models

import (
	"encoding/binary"
	"math"
	"time"
)

// Embedding is a persisted vector embedding keyed by
// (entity_type, entity_id, model_version). Rows are immutable once
// written; a changed source text inserts a new row and marks the old
// one superseded.
type Embedding struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType   string `gorm:"size:30;index:idx_entity,priority:1" json:"entity_type"`
	EntityID     string `gorm:"size:64;index:idx_entity,priority:2" json:"entity_id"`
	ModelVersion string `gorm:"size:64;index:idx_entity,priority:3" json:"model_version"`

	// Vector is serialized as a little-endian float32 blob.
	Vector    []byte `gorm:"type:blob" json:"-"`
	Dimension int    `json:"dimension"`

	// ContentHash of the normalized source text, for staleness checks.
	ContentHash string `gorm:"size:64;index" json:"content_hash"`

	Superseded bool `gorm:"default:false;index" json:"superseded"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Embedding) TableName() string {
	return "embeddings"
}

// Entity types for embedding rows.
const (
	EntityDeveloper = "developer"
	EntityProject   = "project"
	EntityText      = "text"
)

// SetVector serializes a float32 vector into the blob column.
func (e *Embedding) SetVector(vec []float32) {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	e.Vector = buf
	e.Dimension = len(vec)
}

// GetVector deserializes the blob column into a float32 vector.
func (e *Embedding) GetVector() []float32 {
	vec := make([]float32, len(e.Vector)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(e.Vector[i*4:]))
	}
	return vec
}

// EmbeddingConfig holds embedding service configuration.
type EmbeddingConfig struct {
	Model     string `json:"model" yaml:"model"`
	Dimension int    `json:"dimension" yaml:"dimension"`
	BatchSize int    `json:"batch_size" yaml:"batch_size"`
	MaxTokens int    `json:"max_tokens" yaml:"max_tokens"`
	RateLimit int    `json:"rate_limit" yaml:"rate_limit"` // requests per minute
}

// DefaultEmbeddingConfig returns sensible defaults.
func DefaultEmbeddingConfig() EmbeddingConfig {
	return EmbeddingConfig{
		Model:     "text-embedding-3-small",
		Dimension: 1536,
		BatchSize: 100,
		MaxTokens: 8191,
		RateLimit: 3000,
	}
}

// EmbeddingModelDimensions maps model names to their dimensions.
var EmbeddingModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

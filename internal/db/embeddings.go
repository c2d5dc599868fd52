package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// GetEmbedding returns the current (non-superseded) embedding row for an
// entity under the given model version, or nil if none exists.
func (db *DB) GetEmbedding(entityType, entityID, modelVersion string) (*models.Embedding, error) {
	var row models.Embedding
	err := db.Where(
		"entity_type = ? AND entity_id = ? AND model_version = ? AND superseded = ?",
		entityType, entityID, modelVersion, false,
	).Order("created_at DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get embedding: %w", err)
	}
	return &row, nil
}

// PutEmbedding inserts a new embedding row, superseding any existing
// current row for the same key. Rows are never mutated in place.
func (db *DB) PutEmbedding(row *models.Embedding) error {
	return db.Transaction(func(tx *DB) error {
		if err := tx.Model(&models.Embedding{}).
			Where("entity_type = ? AND entity_id = ? AND model_version = ? AND superseded = ?",
				row.EntityType, row.EntityID, row.ModelVersion, false).
			Update("superseded", true).Error; err != nil {
			return fmt.Errorf("supersede embeddings: %w", err)
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("create embedding: %w", err)
		}
		return nil
	})
}

// EmbeddingDimension returns the dimension recorded for a model version,
// or 0 if no rows exist for it yet. All rows of one version share it.
func (db *DB) EmbeddingDimension(modelVersion string) (int, error) {
	var row models.Embedding
	err := db.Where("model_version = ?", modelVersion).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("embedding dimension: %w", err)
	}
	return row.Dimension, nil
}

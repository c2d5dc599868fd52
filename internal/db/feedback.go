package db

import (
	"fmt"
	"time"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// AppendFeedback inserts a feedback row. Feedback is append-only; there
// is no update path.
func (db *DB) AppendFeedback(fb *models.Feedback) error {
	return db.Create(fb).Error
}

// LatestFeedbackForMatch returns the newest feedback row for a match,
// or nil if none exists.
func (db *DB) LatestFeedbackForMatch(matchID string) (*models.Feedback, error) {
	var fb models.Feedback
	res := db.Where("match_id = ?", matchID).Order("created_at DESC").Limit(1).Find(&fb)
	if res.Error != nil {
		return nil, fmt.Errorf("latest feedback: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &fb, nil
}

// FeedbackSince returns all feedback rows created at or after the cutoff,
// oldest first. Used by the periodic confidence recalculation pass.
func (db *DB) FeedbackSince(cutoff time.Time) ([]models.Feedback, error) {
	var rows []models.Feedback
	if err := db.Where("created_at >= ?", cutoff).Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("feedback since: %w", err)
	}
	return rows, nil
}

package models

import "time"

// Feedback is a user's judgement on a served match. Rows are
// append-only; newer feedback for the same match supersedes older rows
// by created_at, nothing is ever mutated in place.
type Feedback struct {
	ID      string `gorm:"primaryKey;size:64" json:"id"`
	MatchID string `gorm:"size:64;index" json:"match_id"`

	// Rating is 1-5.
	Rating int `json:"rating"`

	// AccuracySignals is a JSON object of per-component accuracy votes,
	// e.g. {"vector": true, "graph": false}.
	AccuracySignals string `gorm:"size:2000" json:"accuracy_signals"`

	// SuggestedSkillCorrections is a JSON list of skill names the user
	// believes were mis-scored.
	SuggestedSkillCorrections string `gorm:"size:2000" json:"suggested_skill_corrections"`

	// CandidateID of the matched entity, kept for cache invalidation.
	CandidateID string `gorm:"size:64;index" json:"candidate_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Feedback) TableName() string {
	return "feedback"
}

// MinRating and MaxRating bound accepted feedback ratings.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether a rating is within the accepted range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Package feedback records user judgements on served matches,
// invalidates affected cache entries, and feeds the periodic
// confidence recalculation pass.
package feedback

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/asteroid-belt/devmatch/internal/cache"
	"github.com/asteroid-belt/devmatch/internal/models"
)

// Store persists feedback rows and confidence snapshots.
type Store interface {
	AppendFeedback(fb *models.Feedback) error
	FeedbackSince(cutoff time.Time) ([]models.Feedback, error)
	LatestSkillConfidence(skill string) (*models.SkillConfidence, error)
	PutSkillConfidence(snap *models.SkillConfidence) error
}

// SkillAdjuster lets the recalculation pass feed confidence changes
// back into the skill graph.
type SkillAdjuster interface {
	BumpPopularity(skill string, delta float64) error
}

// Input is the caller-supplied feedback for one match.
type Input struct {
	Rating                    int             `json:"rating"`
	AccuracySignals           map[string]bool `json:"accuracy_signals,omitempty"`
	SuggestedSkillCorrections []string        `json:"suggested_skill_corrections,omitempty"`

	// CandidateID of the matched entity; drives cache invalidation.
	CandidateID string `json:"candidate_id"`
}

// Receipt reports what a feedback submission changed.
type Receipt struct {
	FeedbackID       string `json:"feedback_id"`
	CacheInvalidated bool   `json:"cache_invalidated"`
	EntriesRemoved   int64  `json:"entries_removed"`
}

// Service is the feedback loop.
type Service struct {
	store  Store
	cache  *cache.Cache
	graph  SkillAdjuster
	logger *zap.Logger
}

// New creates a feedback service. graph may be nil if confidence
// recalculation is not wired.
func New(store Store, c *cache.Cache, g SkillAdjuster, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: c, graph: g, logger: logger}
}

// Provide appends a feedback row and invalidates cache entries
// referencing the involved candidate. Feedback rows are never mutated;
// newer rows supersede older ones for the same match.
func (s *Service) Provide(matchID string, in Input) (*Receipt, error) {
	if matchID == "" {
		return nil, fmt.Errorf("empty match id")
	}
	if !models.ValidRating(in.Rating) {
		return nil, fmt.Errorf("rating %d out of range %d-%d", in.Rating, models.MinRating, models.MaxRating)
	}

	signals, err := json.Marshal(in.AccuracySignals)
	if err != nil {
		return nil, fmt.Errorf("encode accuracy signals: %w", err)
	}
	corrections, err := json.Marshal(in.SuggestedSkillCorrections)
	if err != nil {
		return nil, fmt.Errorf("encode skill corrections: %w", err)
	}

	fb := &models.Feedback{
		ID:                        uuid.New().String(),
		MatchID:                   matchID,
		Rating:                    in.Rating,
		AccuracySignals:           string(signals),
		SuggestedSkillCorrections: string(corrections),
		CandidateID:               in.CandidateID,
		CreatedAt:                 time.Now(),
	}
	if err := s.store.AppendFeedback(fb); err != nil {
		return nil, fmt.Errorf("append feedback: %w", err)
	}

	receipt := &Receipt{FeedbackID: fb.ID}
	if s.cache != nil && in.CandidateID != "" {
		removed, err := s.cache.Invalidate(in.CandidateID)
		if err != nil {
			// Stale entries age out by TTL; the feedback row is saved.
			s.logger.Warn("cache invalidation failed", zap.String("candidate", in.CandidateID), zap.Error(err))
		} else {
			receipt.CacheInvalidated = removed > 0
			receipt.EntriesRemoved = removed
		}
	}

	return receipt, nil
}

// RecalculateConfidence folds feedback from the window into versioned
// SkillConfidence snapshots and adjusts graph popularity. It is the
// out-of-band periodic pass; interactive calls never run it.
func (s *Service) RecalculateConfidence(window time.Duration) (int, error) {
	rows, err := s.store.FeedbackSince(time.Now().Add(-window))
	if err != nil {
		return 0, fmt.Errorf("load feedback: %w", err)
	}

	// Each corrected skill counts against confidence; low ratings weigh
	// heavier than mild ones.
	adjust := map[string]float64{}
	for _, fb := range rows {
		var corrections []string
		if fb.SuggestedSkillCorrections != "" {
			if err := json.Unmarshal([]byte(fb.SuggestedSkillCorrections), &corrections); err != nil {
				s.logger.Warn("bad skill corrections payload", zap.String("feedback", fb.ID), zap.Error(err))
				continue
			}
		}
		penalty := 0.02 * float64(models.MaxRating+1-fb.Rating)
		for _, skill := range corrections {
			adjust[skill] -= penalty
		}
	}

	updated := 0
	for skill, delta := range adjust {
		prev, err := s.store.LatestSkillConfidence(skill)
		if err != nil {
			return updated, fmt.Errorf("load confidence: %w", err)
		}

		conf, version := 0.5, 1
		if prev != nil {
			conf, version = prev.Confidence, prev.Version+1
		}
		conf += delta
		if conf < 0 {
			conf = 0
		} else if conf > 1 {
			conf = 1
		}

		if err := s.store.PutSkillConfidence(&models.SkillConfidence{
			Skill:      skill,
			Version:    version,
			Confidence: conf,
			CreatedAt:  time.Now(),
		}); err != nil {
			return updated, fmt.Errorf("store confidence: %w", err)
		}

		if s.graph != nil {
			if err := s.graph.BumpPopularity(skill, delta); err != nil {
				s.logger.Warn("popularity bump failed", zap.String("skill", skill), zap.Error(err))
			}
		}
		updated++
	}

	s.logger.Info("confidence recalculated",
		zap.Int("feedback_rows", len(rows)),
		zap.Int("skills_updated", updated))
	return updated, nil
}

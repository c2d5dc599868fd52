package match

import (
	"errors"

	"github.com/asteroid-belt/devmatch/internal/graph"
)

// ErrInvalidQuery indicates malformed or empty requirements. Unlike
// component failures it propagates to the caller.
var ErrInvalidQuery = errors.New("invalid query")

// Candidate is one scored entry in a ranked result.
type Candidate struct {
	CandidateID string `json:"candidate_id"`

	VectorScore       float64 `json:"vector_score"`
	GraphScore        float64 `json:"graph_score"`
	AvailabilityScore float64 `json:"availability_score"`
	ReputationScore   float64 `json:"reputation_score"`
	CombinedScore     float64 `json:"combined_score"`

	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`

	// VectorAvailable / GraphAvailable record whether each component
	// actually contributed; a degraded result is distinguishable from a
	// fully-scored one.
	VectorAvailable bool `json:"vector_available"`
	GraphAvailable  bool `json:"graph_available"`

	// GraphBreakdown is populated only when analysis is requested.
	GraphBreakdown []graph.SkillScore `json:"graph_breakdown,omitempty"`
}

// Result is a ranked candidate list with query-level metadata.
type Result struct {
	Candidates     []Candidate `json:"candidates"`
	TotalFound     int         `json:"total_found"`
	PoolSize       int         `json:"pool_size"`
	Weights        Weights     `json:"weights"`
	FiltersApplied []string    `json:"filters_applied,omitempty"`
	CacheHit       bool        `json:"cache_hit"`
}

// Filters are the hard constraints applied before scoring.
type Filters struct {
	MinAvailability float64  `json:"min_availability,omitempty"`
	MinReputation   float64  `json:"min_reputation,omitempty"`
	MaxHourlyRate   float64  `json:"max_hourly_rate,omitempty"`
	MustHaveSkills  []string `json:"must_have_skills,omitempty"`
}

// Options configure a ranking call.
type Options struct {
	Limit           int
	Weights         *Weights
	Filters         Filters
	IncludeAnalysis bool

	// MaxConcurrency bounds in-flight per-candidate scoring.
	MaxConcurrency int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Limit:          10,
		MaxConcurrency: 8,
	}
}

// BatchItem is one entry of a batch match request.
type BatchItem struct {
	ItemID    string
	Project   string // project id for developer matching
	Developer string // developer id for project matching
}

// BatchResult captures a per-item outcome; item failures never abort
// the batch.
type BatchResult struct {
	ItemID string  `json:"item_id"`
	Result *Result `json:"result,omitempty"`
	Err    string  `json:"error,omitempty"`
}

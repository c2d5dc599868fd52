// Package models defines the core data structures for devmatch.
package models

// Developer is a snapshot of a developer profile used for matching.
// It carries only the fields the ranking pipeline reads; persistence
// of full profiles lives outside this engine.
type Developer struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Bio             string   `json:"bio"`
	Skills          []string `json:"skills"`
	ExperienceLevel string   `json:"experience_level"`
	ExperienceYears float64  `json:"experience_years"`

	// Availability is the fraction of capacity currently free, 0.0-1.0.
	Availability float64 `json:"availability"`

	// Reputation is the historical rating on a 0-5 scale.
	Reputation float64 `json:"reputation"`

	HourlyRate float64 `json:"hourly_rate"`
}

// Project is a snapshot of a project's requirements used for matching.
type Project struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
	Requirements   string   `json:"requirements"`
	BudgetPerHour  float64  `json:"budget_per_hour"`

	// MinReputation filters out developers below this rating.
	MinReputation float64 `json:"min_reputation"`
}

// Experience levels.
const (
	ExperienceJunior = "junior"
	ExperienceMid    = "mid"
	ExperienceSenior = "senior"
)

// ValidExperienceLevels returns all valid experience levels.
func ValidExperienceLevels() []string {
	return []string{ExperienceJunior, ExperienceMid, ExperienceSenior}
}

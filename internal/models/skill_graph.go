package models

import "time"

// SkillNode is a node in the skill graph.
type SkillNode struct {
	Name       string  `gorm:"primaryKey;size:100" json:"name"` // normalized lowercase
	Category   string  `gorm:"size:50;index" json:"category"`
	Popularity float64 `gorm:"default:0" json:"popularity"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (SkillNode) TableName() string {
	return "skill_nodes"
}

// SkillRelationship is a directed weighted edge between two skills.
// The (from, to, kind) triple is unique; duplicate writes are upserts.
type SkillRelationship struct {
	FromSkill string  `gorm:"primaryKey;size:100" json:"from_skill"`
	ToSkill   string  `gorm:"primaryKey;size:100" json:"to_skill"`
	Kind      string  `gorm:"primaryKey;size:30" json:"kind"`
	Weight    float64 `json:"weight"` // 0.0-1.0

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (SkillRelationship) TableName() string {
	return "skill_relationships"
}

// Relationship kinds.
const (
	RelationRelated    = "related"
	RelationSubsumes   = "subsumes"
	RelationComplement = "complement"
)

// SkillConfidence is a versioned confidence snapshot for a skill,
// produced by the periodic recalculation pass over the feedback log.
// Rows are append-only; the highest version per skill is current.
type SkillConfidence struct {
	Skill      string  `gorm:"primaryKey;size:100" json:"skill"`
	Version    int     `gorm:"primaryKey" json:"version"`
	Confidence float64 `json:"confidence"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (SkillConfidence) TableName() string {
	return "skill_confidences"
}

package db

import (
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// UpsertSkillNode creates or updates a skill node by name.
func (db *DB) UpsertSkillNode(node *models.SkillNode) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"category", "popularity", "updated_at"}),
	}).Create(node).Error
}

// UpsertSkillRelationship creates or updates a directed edge.
func (db *DB) UpsertSkillRelationship(rel *models.SkillRelationship) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "from_skill"}, {Name: "to_skill"}, {Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight", "updated_at"}),
	}).Create(rel).Error
}

// ListSkillNodes returns all skill nodes.
func (db *DB) ListSkillNodes() ([]models.SkillNode, error) {
	var nodes []models.SkillNode
	if err := db.Order("name").Find(&nodes).Error; err != nil {
		return nil, fmt.Errorf("list skill nodes: %w", err)
	}
	return nodes, nil
}

// ListSkillRelationships returns all edges.
func (db *DB) ListSkillRelationships() ([]models.SkillRelationship, error) {
	var rels []models.SkillRelationship
	if err := db.Order("from_skill, to_skill, kind").Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("list skill relationships: %w", err)
	}
	return rels, nil
}

// PutSkillConfidence appends a versioned confidence snapshot.
func (db *DB) PutSkillConfidence(snap *models.SkillConfidence) error {
	return db.Create(snap).Error
}

// LatestSkillConfidence returns the highest-version snapshot for a skill,
// or nil if none exists.
func (db *DB) LatestSkillConfidence(skill string) (*models.SkillConfidence, error) {
	var snap models.SkillConfidence
	res := db.Where("skill = ?", skill).Order("version DESC").Limit(1).Find(&snap)
	if res.Error != nil {
		return nil, fmt.Errorf("latest skill confidence: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &snap, nil
}

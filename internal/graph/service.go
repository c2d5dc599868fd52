package graph

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// Store persists graph nodes and edges. A nil Store keeps the graph
// purely in-memory.
type Store interface {
	UpsertSkillNode(node *models.SkillNode) error
	UpsertSkillRelationship(rel *models.SkillRelationship) error
	ListSkillNodes() ([]models.SkillNode, error)
	ListSkillRelationships() ([]models.SkillRelationship, error)
}

// Service wraps the in-memory graph with write-through persistence.
type Service struct {
	graph  *Graph
	store  Store
	logger *zap.Logger
}

// NewService creates a graph service and loads persisted nodes/edges.
func NewService(store Store, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{graph: NewGraph(), store: store, logger: logger}

	if store != nil {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("load graph: %w", err)
		}
	}
	return s, nil
}

func (s *Service) load() error {
	nodes, err := s.store.ListSkillNodes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGraphQueryFailed, err)
	}
	for _, n := range nodes {
		s.graph.UpsertNode(n.Name, n.Category, n.Popularity)
	}

	rels, err := s.store.ListSkillRelationships()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGraphQueryFailed, err)
	}
	for _, r := range rels {
		s.graph.UpsertRelationship(r.FromSkill, r.ToSkill, r.Kind, r.Weight)
	}

	s.logger.Info("skill graph loaded",
		zap.Int("nodes", len(nodes)),
		zap.Int("edges", len(rels)))
	return nil
}

// UpsertNode writes a node to memory and, when configured, the store.
func (s *Service) UpsertNode(name, category string, popularity float64) error {
	name = Normalize(name)
	if name == "" {
		return fmt.Errorf("empty skill name")
	}

	s.graph.UpsertNode(name, category, popularity)

	if s.store != nil {
		if err := s.store.UpsertSkillNode(&models.SkillNode{
			Name: name, Category: category, Popularity: popularity,
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrGraphQueryFailed, err)
		}
	}
	return nil
}

// UpsertRelationship writes an edge to memory and, when configured,
// the store.
func (s *Service) UpsertRelationship(from, to, kind string, weight float64) error {
	from, to = Normalize(from), Normalize(to)
	if from == "" || to == "" {
		return fmt.Errorf("empty skill name")
	}

	s.graph.UpsertRelationship(from, to, kind, weight)

	if s.store != nil {
		if err := s.store.UpsertSkillRelationship(&models.SkillRelationship{
			FromSkill: from, ToSkill: to, Kind: kind, Weight: weight,
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrGraphQueryFailed, err)
		}
	}
	return nil
}

// RelatedSkills exposes bounded traversal from the in-memory graph.
func (s *Service) RelatedSkills(skill string, maxDepth int) map[string]float64 {
	return s.graph.RelatedSkills(skill, maxDepth)
}

// Compatibility scores candidate skills against required skills.
func (s *Service) Compatibility(candidateSkills, requiredSkills []string) (*CompatibilityResult, error) {
	return s.graph.Compatibility(candidateSkills, requiredSkills, DefaultMaxDepth), nil
}

// OptimalTeam assembles a team by greedy weighted set cover.
func (s *Service) OptimalTeam(candidates []TeamCandidate, requiredSkills []string, teamSizeLimit int) *TeamResult {
	return s.graph.OptimalTeam(candidates, requiredSkills, teamSizeLimit)
}

// BumpPopularity adjusts a skill's popularity, used by the confidence
// recalculation pass.
func (s *Service) BumpPopularity(skill string, delta float64) error {
	skill = Normalize(skill)
	pop := s.graph.Popularity(skill) + delta
	if pop < 0 {
		pop = 0
	}
	return s.UpsertNode(skill, s.graph.Category(skill), pop)
}

// NodeCount returns the number of skills in the graph.
func (s *Service) NodeCount() int {
	return s.graph.NodeCount()
}

// Package match implements the hybrid ranking engine: it fuses vector
// similarity, graph-derived skill compatibility, availability and
// reputation into deterministic ranked candidate lists.
package match

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/asteroid-belt/devmatch/internal/embedding"
	"github.com/asteroid-belt/devmatch/internal/graph"
	"github.com/asteroid-belt/devmatch/internal/models"
)

// Embedder provides the composite embeddings the engine scores with.
type Embedder interface {
	ProfileEmbedding(ctx context.Context, dev *models.Developer) (*embedding.ProfileVectors, error)
	RequirementEmbedding(ctx context.Context, project *models.Project) (*embedding.RequirementVectors, error)
}

// SkillScorer computes graph compatibility between skill sets.
type SkillScorer interface {
	Compatibility(candidateSkills, requiredSkills []string) (*graph.CompatibilityResult, error)
}

// Engine is the hybrid ranking engine. Ranking is a pure function of
// (requirements, candidate snapshot, weights): identical inputs over
// unchanged backing data produce identical ordered output.
type Engine struct {
	embedder Embedder
	scorer   SkillScorer
	logger   *zap.Logger
}

// NewEngine creates a ranking engine.
func NewEngine(embedder Embedder, scorer SkillScorer, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{embedder: embedder, scorer: scorer, logger: logger}
}

// MatchDevelopers ranks developers against a project's requirements.
// An empty pool yields an empty, non-error result. Component failures
// (embedding model, graph store) degrade the affected score to zero and
// clear its availability flag; they never abort the request.
func (e *Engine) MatchDevelopers(ctx context.Context, project *models.Project, pool []models.Developer, opts Options) (*Result, error) {
	if project == nil || (len(project.RequiredSkills) == 0 && project.Description == "") {
		return nil, ErrInvalidQuery
	}
	opts = fillOptions(opts)
	weights := resolveWeights(opts.Weights)

	result := &Result{
		Candidates: []Candidate{},
		PoolSize:   len(pool),
		Weights:    weights,
	}

	filtered, applied := prefilterDevelopers(project, pool, opts.Filters)
	result.FiltersApplied = applied
	if len(filtered) == 0 {
		return result, nil
	}

	// Requirement embedding is shared by every candidate; a failure
	// here degrades the vector component for the whole pool.
	reqVecs, reqErr := e.embedder.RequirementEmbedding(ctx, project)
	if reqErr != nil && !errors.Is(reqErr, embedding.ErrEmbeddingUnavailable) {
		return nil, reqErr
	}
	if reqErr != nil {
		e.logger.Warn("requirement embedding degraded", zap.String("project", project.ID), zap.Error(reqErr))
	}

	candidates := make([]Candidate, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrency)

	for i := range filtered {
		i := i
		g.Go(func() error {
			candidates[i] = e.scoreDeveloper(gctx, project, &filtered[i], reqVecs, weights, opts.IncludeAnalysis)
			return nil
		})
	}
	_ = g.Wait() // workers degrade instead of failing

	rank(candidates)
	result.TotalFound = len(candidates)
	if len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}
	result.Candidates = candidates
	return result, nil
}

// scoreDeveloper computes all four components for one candidate.
func (e *Engine) scoreDeveloper(ctx context.Context, project *models.Project, dev *models.Developer, reqVecs *embedding.RequirementVectors, weights Weights, analysis bool) Candidate {
	c := Candidate{
		CandidateID:   dev.ID,
		MatchedSkills: []string{},
		MissingSkills: []string{},
	}

	if reqVecs != nil {
		profile, err := e.embedder.ProfileEmbedding(ctx, dev)
		if err == nil {
			// Skills-vs-requirements carries more signal than the
			// narrative fields, hence the 0.6/0.4 split.
			c.VectorScore = 0.6*Cos01(reqVecs.Requirements, profile.Skills) +
				0.4*Cos01(reqVecs.Description, profile.Experience)
			c.VectorAvailable = true
		} else if !errors.Is(err, embedding.ErrEmbeddingUnavailable) {
			e.logger.Warn("profile embedding failed", zap.String("developer", dev.ID), zap.Error(err))
		}
	}

	compat, err := e.scorer.Compatibility(dev.Skills, project.RequiredSkills)
	if err != nil {
		e.logger.Warn("graph compatibility failed", zap.String("developer", dev.ID), zap.Error(err))
	} else {
		c.GraphScore = compat.TotalScore
		c.GraphAvailable = true
		c.MatchedSkills = compat.MatchedSkills
		c.MissingSkills = compat.MissingSkills
		if analysis {
			c.GraphBreakdown = compat.Breakdown
		}
	}

	c.AvailabilityScore = clamp01(dev.Availability)
	c.ReputationScore = clamp01(dev.Reputation / 5)
	c.CombinedScore = weights.Combine(c.VectorScore, c.GraphScore, c.AvailabilityScore, c.ReputationScore)
	return c
}

// MatchProjects ranks projects against a developer's profile. The
// availability component becomes the budget-fit fraction of the project
// against the developer's rate; reputation stays the developer's own
// normalized rating (constant across candidates).
func (e *Engine) MatchProjects(ctx context.Context, dev *models.Developer, pool []models.Project, opts Options) (*Result, error) {
	if dev == nil || len(dev.Skills) == 0 {
		return nil, ErrInvalidQuery
	}
	opts = fillOptions(opts)
	weights := resolveWeights(opts.Weights)

	result := &Result{
		Candidates: []Candidate{},
		PoolSize:   len(pool),
		Weights:    weights,
	}

	filtered, applied := prefilterProjects(dev, pool, opts.Filters)
	result.FiltersApplied = applied
	if len(filtered) == 0 {
		return result, nil
	}

	profile, profErr := e.embedder.ProfileEmbedding(ctx, dev)
	if profErr != nil && !errors.Is(profErr, embedding.ErrEmbeddingUnavailable) {
		return nil, profErr
	}
	if profErr != nil {
		e.logger.Warn("profile embedding degraded", zap.String("developer", dev.ID), zap.Error(profErr))
	}

	candidates := make([]Candidate, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxConcurrency)

	for i := range filtered {
		i := i
		g.Go(func() error {
			candidates[i] = e.scoreProject(gctx, dev, &filtered[i], profile, weights, opts.IncludeAnalysis)
			return nil
		})
	}
	_ = g.Wait()

	rank(candidates)
	result.TotalFound = len(candidates)
	if len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}
	result.Candidates = candidates
	return result, nil
}

func (e *Engine) scoreProject(ctx context.Context, dev *models.Developer, project *models.Project, profile *embedding.ProfileVectors, weights Weights, analysis bool) Candidate {
	c := Candidate{
		CandidateID:   project.ID,
		MatchedSkills: []string{},
		MissingSkills: []string{},
	}

	if profile != nil {
		reqVecs, err := e.embedder.RequirementEmbedding(ctx, project)
		if err == nil {
			c.VectorScore = 0.6*Cos01(reqVecs.Requirements, profile.Skills) +
				0.4*Cos01(reqVecs.Description, profile.Experience)
			c.VectorAvailable = true
		} else if !errors.Is(err, embedding.ErrEmbeddingUnavailable) {
			e.logger.Warn("requirement embedding failed", zap.String("project", project.ID), zap.Error(err))
		}
	}

	compat, err := e.scorer.Compatibility(dev.Skills, project.RequiredSkills)
	if err != nil {
		e.logger.Warn("graph compatibility failed", zap.String("project", project.ID), zap.Error(err))
	} else {
		c.GraphScore = compat.TotalScore
		c.GraphAvailable = true
		c.MatchedSkills = compat.MatchedSkills
		c.MissingSkills = compat.MissingSkills
		if analysis {
			c.GraphBreakdown = compat.Breakdown
		}
	}

	c.AvailabilityScore = budgetFit(project.BudgetPerHour, dev.HourlyRate)
	c.ReputationScore = clamp01(dev.Reputation / 5)
	c.CombinedScore = weights.Combine(c.VectorScore, c.GraphScore, c.AvailabilityScore, c.ReputationScore)
	return c
}

// AdvancedSearch runs the developer pipeline with an explicit hard
// filter stage and echoes the applied filters in the response.
func (e *Engine) AdvancedSearch(ctx context.Context, project *models.Project, pool []models.Developer, filters Filters, weights *Weights, opts Options) (*Result, error) {
	opts.Filters = filters
	opts.Weights = weights
	return e.MatchDevelopers(ctx, project, pool, opts)
}

// rank orders candidates by combined score descending, ties broken by
// reputation descending then candidate id ascending. The order is
// total, so repeated calls over the same snapshot are reproducible.
func rank(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.CombinedScore != b.CombinedScore {
			return a.CombinedScore > b.CombinedScore
		}
		if a.ReputationScore != b.ReputationScore {
			return a.ReputationScore > b.ReputationScore
		}
		return a.CandidateID < b.CandidateID
	})
}

func prefilterDevelopers(project *models.Project, pool []models.Developer, f Filters) ([]models.Developer, []string) {
	var applied []string
	minRep := f.MinReputation
	if project.MinReputation > minRep {
		minRep = project.MinReputation
	}
	maxRate := f.MaxHourlyRate
	if maxRate == 0 && project.BudgetPerHour > 0 {
		maxRate = project.BudgetPerHour
	}

	if f.MinAvailability > 0 {
		applied = append(applied, "min_availability")
	}
	if minRep > 0 {
		applied = append(applied, "min_reputation")
	}
	if maxRate > 0 {
		applied = append(applied, "max_hourly_rate")
	}
	if len(f.MustHaveSkills) > 0 {
		applied = append(applied, "must_have_skills")
	}

	out := make([]models.Developer, 0, len(pool))
	for _, dev := range pool {
		if dev.Availability < f.MinAvailability {
			continue
		}
		if dev.Reputation < minRep {
			continue
		}
		if maxRate > 0 && dev.HourlyRate > maxRate {
			continue
		}
		if !holdsAll(dev.Skills, f.MustHaveSkills) {
			continue
		}
		out = append(out, dev)
	}
	return out, applied
}

func prefilterProjects(dev *models.Developer, pool []models.Project, f Filters) ([]models.Project, []string) {
	var applied []string
	if f.MaxHourlyRate > 0 {
		applied = append(applied, "max_hourly_rate")
	}

	out := make([]models.Project, 0, len(pool))
	for _, project := range pool {
		if project.MinReputation > dev.Reputation {
			continue
		}
		if f.MaxHourlyRate > 0 && project.BudgetPerHour > 0 && project.BudgetPerHour < f.MaxHourlyRate {
			continue
		}
		out = append(out, project)
	}
	return out, applied
}

func holdsAll(skills, required []string) bool {
	if len(required) == 0 {
		return true
	}
	held := make(map[string]bool, len(skills))
	for _, s := range skills {
		held[graph.Normalize(s)] = true
	}
	for _, r := range required {
		if !held[graph.Normalize(r)] {
			return false
		}
	}
	return true
}

// budgetFit is the fraction of the developer's rate the project budget
// covers, capped at 1. Unpriced inputs count as a full fit.
func budgetFit(budget, rate float64) float64 {
	if rate <= 0 || budget <= 0 {
		return 1
	}
	return clamp01(budget / rate)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func fillOptions(opts Options) Options {
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultOptions().MaxConcurrency
	}
	return opts
}

func resolveWeights(w *Weights) Weights {
	if w == nil {
		return DefaultWeights()
	}
	return w.Normalize()
}

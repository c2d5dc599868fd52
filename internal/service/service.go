// Package service exposes the matching engine to callers: registered
// developer/project snapshots in, cached ranked results out.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/asteroid-belt/devmatch/internal/cache"
	"github.com/asteroid-belt/devmatch/internal/feedback"
	"github.com/asteroid-belt/devmatch/internal/graph"
	"github.com/asteroid-belt/devmatch/internal/match"
	"github.com/asteroid-belt/devmatch/internal/models"
	"github.com/asteroid-belt/devmatch/internal/telemetry"
	"github.com/asteroid-belt/devmatch/internal/vector"
)

// ErrNotFound indicates an unknown developer or project id. It
// propagates to the caller, unlike component failures.
var ErrNotFound = errors.New("not found")

// Search types used as cache namespaces.
const (
	SearchDevelopers = "developer_matches"
	SearchProjects   = "project_matches"
	SearchAdvanced   = "advanced_search"
)

// Config holds service tuning knobs.
type Config struct {
	CacheTTL     time.Duration
	DefaultLimit int

	// MaxConcurrency bounds in-flight per-candidate scoring in the
	// ranking engine.
	MaxConcurrency int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL:       15 * time.Minute,
		DefaultLimit:   10,
		MaxConcurrency: 8,
	}
}

// Service wires the ranking engine, cache and feedback loop behind the
// caller-facing operations.
type Service struct {
	engine    *match.Engine
	cache     *cache.Cache
	feedback  *feedback.Service
	graph     *graph.Service
	index     vector.Index // optional; nil disables similarity pool selection
	telemetry telemetry.Client
	logger    *zap.Logger
	cfg       Config

	mu         sync.RWMutex
	developers map[string]models.Developer
	projects   map[string]models.Project
}

// New creates the service. telemetryClient may be nil.
func New(engine *match.Engine, c *cache.Cache, fb *feedback.Service, g *graph.Service, tc telemetry.Client, cfg Config, logger *zap.Logger) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tc == nil {
		tc = telemetry.New()
	}
	return &Service{
		engine:     engine,
		cache:      c,
		feedback:   fb,
		graph:      g,
		telemetry:  tc,
		logger:     logger,
		cfg:        cfg,
		developers: map[string]models.Developer{},
		projects:   map[string]models.Project{},
	}
}

// SetVectorIndex wires the similarity index used by SimilarDevelopers
// and upsert-time indexing. Optional; matching works without it.
func (s *Service) SetVectorIndex(index vector.Index) {
	s.index = index
}

// UpsertDeveloper registers or replaces a developer snapshot. A changed
// snapshot invalidates cache entries referencing the developer, since
// its skills may alter rankings.
func (s *Service) UpsertDeveloper(ctx context.Context, dev models.Developer) error {
	if dev.ID == "" {
		return fmt.Errorf("%w: developer id required", match.ErrInvalidQuery)
	}

	s.mu.Lock()
	s.developers[dev.ID] = dev
	s.mu.Unlock()

	if s.index != nil {
		if _, err := s.index.AddDeveloper(ctx, &dev); err != nil {
			s.logger.Warn("vector index update failed", zap.String("developer", dev.ID), zap.Error(err))
		}
	}
	if s.cache != nil {
		if _, err := s.cache.Invalidate(dev.ID); err != nil {
			s.logger.Warn("invalidate on developer upsert failed", zap.String("developer", dev.ID), zap.Error(err))
		}
	}
	return nil
}

// UpsertProject registers or replaces a project snapshot.
func (s *Service) UpsertProject(ctx context.Context, project models.Project) error {
	if project.ID == "" {
		return fmt.Errorf("%w: project id required", match.ErrInvalidQuery)
	}

	s.mu.Lock()
	s.projects[project.ID] = project
	s.mu.Unlock()

	if s.index != nil {
		if _, err := s.index.AddProject(ctx, &project); err != nil {
			s.logger.Warn("vector index update failed", zap.String("project", project.ID), zap.Error(err))
		}
	}
	if s.cache != nil {
		if _, err := s.cache.Invalidate(project.ID); err != nil {
			s.logger.Warn("invalidate on project upsert failed", zap.String("project", project.ID), zap.Error(err))
		}
	}
	return nil
}

// SimilarDeveloper pairs an indexed similarity hit with its snapshot.
type SimilarDeveloper struct {
	Developer models.Developer `json:"developer"`
	Score     float32          `json:"score"`
}

// SimilarDevelopers finds registered developers whose indexed profile
// is similar to a free-text query. Requires a vector index.
func (s *Service) SimilarDevelopers(ctx context.Context, query string, limit int) ([]SimilarDeveloper, error) {
	if s.index == nil {
		return nil, fmt.Errorf("vector index not configured")
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	hits, err := s.index.SearchDevelopers(ctx, query, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("search developers: %w", err)
	}

	out := make([]SimilarDeveloper, 0, len(hits))
	for _, hit := range hits {
		dev, err := s.Developer(hit.EntityID)
		if err != nil {
			continue // indexed but since unregistered
		}
		out = append(out, SimilarDeveloper{Developer: dev, Score: hit.Score})
	}
	return out, nil
}

// Developer returns a registered snapshot.
func (s *Service) Developer(id string) (models.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dev, ok := s.developers[id]
	if !ok {
		return models.Developer{}, fmt.Errorf("developer %q: %w", id, ErrNotFound)
	}
	return dev, nil
}

// Project returns a registered snapshot.
func (s *Service) Project(id string) (models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id]
	if !ok {
		return models.Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return project, nil
}

// developerPool snapshots all registered developers in id order, so a
// ranking call sees a stable pool.
func (s *Service) developerPool() []models.Developer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool := make([]models.Developer, 0, len(s.developers))
	for _, dev := range s.developers {
		pool = append(pool, dev)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool
}

func (s *Service) projectPool() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool := make([]models.Project, 0, len(s.projects))
	for _, project := range s.projects {
		pool = append(pool, project)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool
}

// matchOptions builds engine options from the configured knobs.
func (s *Service) matchOptions(limit int) match.Options {
	opts := match.DefaultOptions()
	opts.Limit = limit
	opts.MaxConcurrency = s.cfg.MaxConcurrency
	return opts
}

// FindMatchingDevelopers ranks registered developers for a project.
func (s *Service) FindMatchingDevelopers(ctx context.Context, project models.Project, limit int, includeAnalysis bool) (*match.Result, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	params := map[string]any{
		"project_id": project.ID,
		"skills":     project.RequiredSkills,
		"limit":      limit,
		"analysis":   includeAnalysis,
	}

	return s.cached(ctx, SearchDevelopers, params, func() (*match.Result, []string, error) {
		opts := s.matchOptions(limit)
		opts.IncludeAnalysis = includeAnalysis

		result, err := s.engine.MatchDevelopers(ctx, &project, s.developerPool(), opts)
		if err != nil {
			return nil, nil, err
		}
		return result, refsFor(project.ID, result), nil
	})
}

// FindMatchingProjects ranks registered projects for a developer.
func (s *Service) FindMatchingProjects(ctx context.Context, dev models.Developer, limit int, includeAnalysis bool) (*match.Result, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	params := map[string]any{
		"developer_id": dev.ID,
		"skills":       dev.Skills,
		"limit":        limit,
		"analysis":     includeAnalysis,
	}

	return s.cached(ctx, SearchProjects, params, func() (*match.Result, []string, error) {
		opts := s.matchOptions(limit)
		opts.IncludeAnalysis = includeAnalysis

		result, err := s.engine.MatchProjects(ctx, &dev, s.projectPool(), opts)
		if err != nil {
			return nil, nil, err
		}
		return result, refsFor(dev.ID, result), nil
	})
}

// AdvancedSearch runs the developer pipeline with explicit hard filters
// and custom weights.
func (s *Service) AdvancedSearch(ctx context.Context, project models.Project, filters match.Filters, weights *match.Weights, limit int) (*match.Result, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	params := map[string]any{
		"project_id":       project.ID,
		"skills":           project.RequiredSkills,
		"limit":            limit,
		"min_availability": filters.MinAvailability,
		"min_reputation":   filters.MinReputation,
		"max_hourly_rate":  filters.MaxHourlyRate,
		"must_have_skills": filters.MustHaveSkills,
	}
	if weights != nil {
		params["weights"] = map[string]any{
			"vector":       weights.Vector,
			"graph":        weights.Graph,
			"availability": weights.Availability,
			"reputation":   weights.Reputation,
		}
	}

	return s.cached(ctx, SearchAdvanced, params, func() (*match.Result, []string, error) {
		result, err := s.engine.AdvancedSearch(ctx, &project, s.developerPool(), filters, weights, s.matchOptions(limit))
		if err != nil {
			return nil, nil, err
		}
		return result, refsFor(project.ID, result), nil
	})
}

// cached runs a compute through the single-flight cache, marking the
// result as a hit when served from cache. A cache failure degrades to a
// fresh computation.
func (s *Service) cached(ctx context.Context, searchType string, params map[string]any, compute func() (*match.Result, []string, error)) (*match.Result, error) {
	start := time.Now()

	if s.cache == nil {
		result, _, err := compute()
		return result, err
	}

	payload, hit, err := s.cache.GetOrCompute(searchType, params, s.cfg.CacheTTL, func() ([]byte, []string, error) {
		result, refs, err := compute()
		if err != nil {
			return nil, nil, err
		}
		data, err := json.Marshal(result)
		if err != nil {
			return nil, nil, fmt.Errorf("encode result: %w", err)
		}
		return data, refs, nil
	})
	if err != nil {
		return nil, err
	}

	var result match.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	result.CacheHit = hit

	s.telemetry.TrackMatchPerformed(searchType, result.PoolSize, len(result.Candidates), hit, time.Since(start).Milliseconds())
	return &result, nil
}

// refsFor lists the entity ids a result references, for targeted cache
// invalidation.
func refsFor(queryEntityID string, result *match.Result) []string {
	refs := make([]string, 0, len(result.Candidates)+1)
	if queryEntityID != "" {
		refs = append(refs, queryEntityID)
	}
	for _, c := range result.Candidates {
		refs = append(refs, c.CandidateID)
	}
	return refs
}

// BatchMatch runs the pipeline once per item. Per-item failures,
// including unknown ids, are captured in the item's result; the batch
// itself never aborts.
func (s *Service) BatchMatch(ctx context.Context, searchType string, items []match.BatchItem, limitPerItem int) []match.BatchResult {
	results := make([]match.BatchResult, len(items))
	failed := 0

	for i, item := range items {
		results[i].ItemID = item.ItemID

		var result *match.Result
		var err error
		switch searchType {
		case SearchProjects:
			var dev models.Developer
			if dev, err = s.Developer(item.Developer); err == nil {
				result, err = s.FindMatchingProjects(ctx, dev, limitPerItem, false)
			}
		default:
			var project models.Project
			if project, err = s.Project(item.Project); err == nil {
				result, err = s.FindMatchingDevelopers(ctx, project, limitPerItem, false)
			}
		}

		if err != nil {
			results[i].Err = err.Error()
			failed++
			continue
		}
		results[i].Result = result
	}

	s.telemetry.TrackBatchMatch(searchType, len(items), failed)
	return results
}

// FindOptimalTeam assembles a team from registered developers by greedy
// skill coverage.
func (s *Service) FindOptimalTeam(requiredSkills []string, teamSizeLimit int) (*graph.TeamResult, error) {
	if len(requiredSkills) == 0 {
		return nil, fmt.Errorf("%w: required skills missing", match.ErrInvalidQuery)
	}

	pool := s.developerPool()
	candidates := make([]graph.TeamCandidate, len(pool))
	for i, dev := range pool {
		candidates[i] = graph.TeamCandidate{ID: dev.ID, Skills: dev.Skills}
	}
	return s.graph.OptimalTeam(candidates, requiredSkills, teamSizeLimit), nil
}

// UpsertSkillNode writes a skill node through the graph service.
func (s *Service) UpsertSkillNode(name, category string, popularity float64) error {
	return s.graph.UpsertNode(name, category, popularity)
}

// UpsertSkillRelationship writes a skill edge through the graph service.
func (s *Service) UpsertSkillRelationship(from, to, kind string, weight float64) error {
	return s.graph.UpsertRelationship(from, to, kind, weight)
}

// ProvideFeedback records feedback for a served match and invalidates
// affected cache entries.
func (s *Service) ProvideFeedback(matchID string, in feedback.Input) (*feedback.Receipt, error) {
	receipt, err := s.feedback.Provide(matchID, in)
	if err != nil {
		return nil, err
	}
	s.telemetry.TrackFeedbackSubmitted(in.Rating, receipt.CacheInvalidated)
	return receipt, nil
}

// RecalculateConfidence folds recent feedback into skill confidence
// snapshots.
func (s *Service) RecalculateConfidence(window time.Duration) (int, error) {
	return s.feedback.RecalculateConfidence(window)
}

// CacheStatistics reports cache counters.
func (s *Service) CacheStatistics() (*models.CacheStats, error) {
	return s.cache.Statistics()
}

// CleanupExpiredCache deletes entries past their TTL.
func (s *Service) CleanupExpiredCache() (int64, error) {
	removed, err := s.cache.CleanupExpired()
	if err == nil {
		s.telemetry.TrackCacheMaintenance("cleanup", removed)
	}
	return removed, err
}

// OptimizeCachePerformance evicts cold entries and reports before/after
// counts.
func (s *Service) OptimizeCachePerformance() (*cache.OptimizeReport, error) {
	report, err := s.cache.Optimize()
	if err == nil {
		s.telemetry.TrackCacheMaintenance("optimize", report.Expired+report.Cold)
	}
	return report, err
}

package embedding

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/asteroid-belt/devmatch/internal/hash"
	"github.com/asteroid-belt/devmatch/internal/models"
)

// Store persists embedding rows keyed by (entity_type, entity_id,
// model_version). A nil Store disables persistence; the in-process LRU
// still applies.
type Store interface {
	GetEmbedding(entityType, entityID, modelVersion string) (*models.Embedding, error)
	PutEmbedding(row *models.Embedding) error
	EmbeddingDimension(modelVersion string) (int, error)
}

// Service generates embeddings with a normalized-text cache in front of
// the external model.
type Service struct {
	provider Provider
	store    Store
	cache    *lru.Cache[string, []float32]
	cfg      models.EmbeddingConfig
	logger   *zap.Logger
}

// NewService creates an embedding service. store may be nil.
func NewService(provider Provider, store Store, cfg models.EmbeddingConfig, logger *zap.Logger) (*Service, error) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = models.DefaultEmbeddingConfig().MaxTokens
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = models.DefaultEmbeddingConfig().BatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[string, []float32](4096)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Service{
		provider: provider,
		store:    store,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// ModelVersion identifies the underlying model.
func (s *Service) ModelVersion() string {
	return s.provider.ModelVersion()
}

// Generate returns the embedding for a text, serving repeats from cache.
// Model failure or timeout yields ErrEmbeddingUnavailable.
func (s *Service) Generate(ctx context.Context, text string) ([]float32, error) {
	norm := NormalizeText(TruncateToTokens(text, s.cfg.MaxTokens))
	if norm == "" {
		return nil, fmt.Errorf("empty text: %w", ErrEmbeddingUnavailable)
	}
	key := hash.TruncatedSHA256(norm)

	if vec, ok := s.cache.Get(key); ok {
		return vec, nil
	}

	if s.store != nil {
		row, err := s.store.GetEmbedding(models.EntityText, key, s.provider.ModelVersion())
		if err != nil {
			s.logger.Warn("embedding store read failed", zap.Error(err))
		} else if row != nil {
			vec := row.GetVector()
			s.cache.Add(key, vec)
			return vec, nil
		}
	}

	vec, err := s.provider.Embed(ctx, norm)
	if err != nil {
		s.logger.Warn("embedding model call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if err := s.checkDimension(vec); err != nil {
		return nil, err
	}

	s.persist(models.EntityText, key, norm, vec)
	s.cache.Add(key, vec)
	return vec, nil
}

// BatchItem is the per-text result of GenerateBatch. A failed item
// carries Err (wrapping ErrEmbeddingUnavailable) and a nil Vector.
type BatchItem struct {
	Vector []float32
	Err    error
}

// GenerateBatch embeds multiple texts, batching cache misses into model
// calls of at most BatchSize texts. Partial failures mark individual
// items unavailable instead of failing the whole batch; a failed model
// call marks only its chunk.
func (s *Service) GenerateBatch(ctx context.Context, texts []string) []BatchItem {
	items := make([]BatchItem, len(texts))

	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		norm := NormalizeText(TruncateToTokens(text, s.cfg.MaxTokens))
		if norm == "" {
			items[i].Err = fmt.Errorf("empty text: %w", ErrEmbeddingUnavailable)
			continue
		}
		if vec, ok := s.cache.Get(hash.TruncatedSHA256(norm)); ok {
			items[i].Vector = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, norm)
	}

	if len(missTexts) == 0 {
		return items
	}

	for start := 0; start < len(missTexts); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(missTexts) {
			end = len(missTexts)
		}
		chunkTexts := missTexts[start:end]
		chunkIdx := missIdx[start:end]

		vecs, err := s.provider.EmbedBatch(ctx, chunkTexts)
		if err != nil {
			s.logger.Warn("batch embedding call failed", zap.Int("count", len(chunkTexts)), zap.Error(err))
			for _, i := range chunkIdx {
				items[i].Err = fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
			}
			continue
		}

		for j, i := range chunkIdx {
			if j >= len(vecs) || vecs[j] == nil {
				items[i].Err = ErrEmbeddingUnavailable
				continue
			}
			if err := s.checkDimension(vecs[j]); err != nil {
				items[i].Err = err
				continue
			}
			key := hash.TruncatedSHA256(chunkTexts[j])
			s.persist(models.EntityText, key, chunkTexts[j], vecs[j])
			s.cache.Add(key, vecs[j])
			items[i].Vector = vecs[j]
		}
	}

	return items
}

// checkDimension enforces the configured output dimension, when set. A
// mismatched vector is treated as a model failure, not stored.
func (s *Service) checkDimension(vec []float32) error {
	if s.cfg.Dimension > 0 && len(vec) != s.cfg.Dimension {
		return fmt.Errorf("%w: model returned %d dimensions, want %d",
			ErrEmbeddingUnavailable, len(vec), s.cfg.Dimension)
	}
	return nil
}

// ProfileVectors are the composite embeddings for a developer profile.
type ProfileVectors struct {
	Skills     []float32
	Experience []float32
}

// ProfileEmbedding builds the skills and experience vectors for a
// developer from weighted field concatenation.
func (s *Service) ProfileEmbedding(ctx context.Context, dev *models.Developer) (*ProfileVectors, error) {
	items := s.GenerateBatch(ctx, []string{SkillsContent(dev), ExperienceContent(dev)})
	if items[0].Err != nil {
		return nil, items[0].Err
	}
	if items[1].Err != nil {
		return nil, items[1].Err
	}
	return &ProfileVectors{Skills: items[0].Vector, Experience: items[1].Vector}, nil
}

// RequirementVectors are the composite embeddings for a project.
type RequirementVectors struct {
	Description  []float32
	Requirements []float32
}

// RequirementEmbedding builds the description and requirements vectors
// for a project.
func (s *Service) RequirementEmbedding(ctx context.Context, project *models.Project) (*RequirementVectors, error) {
	items := s.GenerateBatch(ctx, []string{DescriptionContent(project), RequirementsContent(project)})
	if items[0].Err != nil {
		return nil, items[0].Err
	}
	if items[1].Err != nil {
		return nil, items[1].Err
	}
	return &RequirementVectors{Description: items[0].Vector, Requirements: items[1].Vector}, nil
}

// StoreFor embeds text on behalf of a concrete entity and persists the
// row under (entityType, entityID, model_version). A source-text change
// supersedes the previous row rather than mutating it.
func (s *Service) StoreFor(ctx context.Context, entityType, entityID, text string) ([]float32, error) {
	norm := NormalizeText(TruncateToTokens(text, s.cfg.MaxTokens))
	contentHash := hash.TruncatedSHA256(norm)

	if s.store != nil {
		row, err := s.store.GetEmbedding(entityType, entityID, s.provider.ModelVersion())
		if err == nil && row != nil && row.ContentHash == contentHash {
			return row.GetVector(), nil
		}
	}

	vec, err := s.Generate(ctx, text)
	if err != nil {
		return nil, err
	}
	s.persist(entityType, entityID, norm, vec)
	return vec, nil
}

// persist writes an embedding row, enforcing the per-model dimension
// invariant. Persistence failures are logged, not propagated: the
// caller already has the vector.
func (s *Service) persist(entityType, entityID, normText string, vec []float32) {
	if s.store == nil {
		return
	}

	modelVersion := s.provider.ModelVersion()
	if dim, err := s.store.EmbeddingDimension(modelVersion); err == nil && dim > 0 && dim != len(vec) {
		s.logger.Error("embedding dimension mismatch",
			zap.String("model", modelVersion),
			zap.Int("stored", dim),
			zap.Int("got", len(vec)))
		return
	}

	row := &models.Embedding{
		EntityType:   entityType,
		EntityID:     entityID,
		ModelVersion: modelVersion,
		ContentHash:  hash.TruncatedSHA256(normText),
	}
	row.SetVector(vec)

	if err := s.store.PutEmbedding(row); err != nil {
		s.logger.Warn("embedding store write failed", zap.Error(err))
	}
}

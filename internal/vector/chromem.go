package vector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/philippgille/chromem-go"

	"github.com/asteroid-belt/devmatch/internal/embedding"
	"github.com/asteroid-belt/devmatch/internal/hash"
	"github.com/asteroid-belt/devmatch/internal/models"
)

// ChromemIndex implements Index using chromem-go.
type ChromemIndex struct {
	db         *chromem.DB
	developers *chromem.Collection
	projects   *chromem.Collection
	dataDir    string
}

// openAIModel resolves the configured model name, defaulting to
// text-embedding-3-small. The index and the embedding service must
// agree on the model or their similarity spaces diverge.
func openAIModel(name string) chromem.EmbeddingModelOpenAI {
	if name == "" {
		return chromem.EmbeddingModelOpenAI3Small
	}
	return chromem.EmbeddingModelOpenAI(name)
}

// NewChromemIndex creates a new chromem-go vector index.
func NewChromemIndex(cfg Config) (*ChromemIndex, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY required for embeddings")
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".devmatch", "vectors")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create vector dir: %w", err)
	}

	db, err := chromem.NewPersistentDB(dataDir, false)
	if err != nil {
		return nil, fmt.Errorf("create chromem db: %w", err)
	}

	embeddingFunc := chromem.NewEmbeddingFuncOpenAI(cfg.OpenAIKey, openAIModel(cfg.Model))

	developers, err := db.GetOrCreateCollection("developers", nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create developers collection: %w", err)
	}
	projects, err := db.GetOrCreateCollection("projects", nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create projects collection: %w", err)
	}

	return &ChromemIndex{
		db:         db,
		developers: developers,
		projects:   projects,
		dataDir:    dataDir,
	}, nil
}

// AddDeveloper embeds and stores a developer profile.
func (s *ChromemIndex) AddDeveloper(ctx context.Context, dev *models.Developer) (string, error) {
	content := embedding.SkillsContent(dev) + "\n\n" + embedding.ExperienceContent(dev)
	content = embedding.TruncateToTokens(content, 8000)
	h := hash.TruncatedSHA256(content)

	doc := chromem.Document{
		ID:      dev.ID,
		Content: content,
		Metadata: map[string]string{
			"name":         dev.Name,
			"content_hash": h,
		},
	}

	if err := s.developers.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return "", fmt.Errorf("add developer document: %w", err)
	}
	return h, nil
}

// AddProject embeds and stores a project's requirement text.
func (s *ChromemIndex) AddProject(ctx context.Context, project *models.Project) (string, error) {
	content := embedding.DescriptionContent(project) + "\n\n" + embedding.RequirementsContent(project)
	content = embedding.TruncateToTokens(content, 8000)
	h := hash.TruncatedSHA256(content)

	doc := chromem.Document{
		ID:      project.ID,
		Content: content,
		Metadata: map[string]string{
			"title":        project.Title,
			"content_hash": h,
		},
	}

	if err := s.projects.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return "", fmt.Errorf("add project document: %w", err)
	}
	return h, nil
}

// SearchDevelopers finds developers similar to the query text.
func (s *ChromemIndex) SearchDevelopers(ctx context.Context, query string, limit int, threshold float32) ([]Hit, error) {
	return search(ctx, s.developers, query, limit, threshold)
}

// SearchProjects finds projects similar to the query text.
func (s *ChromemIndex) SearchProjects(ctx context.Context, query string, limit int, threshold float32) ([]Hit, error) {
	return search(ctx, s.projects, query, limit, threshold)
}

func search(ctx context.Context, coll *chromem.Collection, query string, limit int, threshold float32) ([]Hit, error) {
	if limit <= 0 {
		limit = 50
	}

	// Cap limit to collection size to avoid chromem error
	count := coll.Count()
	if limit > count {
		limit = count
	}
	if limit == 0 {
		return []Hit{}, nil
	}

	results, err := coll.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		if r.Similarity < threshold {
			continue
		}
		hits = append(hits, Hit{
			EntityID:    r.ID,
			Score:       r.Similarity,
			ContentHash: r.Metadata["content_hash"],
		})
	}
	return hits, nil
}

func (s *ChromemIndex) collectionFor(entityType string) *chromem.Collection {
	if entityType == models.EntityProject {
		return s.projects
	}
	return s.developers
}

// Delete removes an entity's vectors by id.
func (s *ChromemIndex) Delete(ctx context.Context, entityType, id string) error {
	return s.collectionFor(entityType).Delete(ctx, nil, nil, id)
}

// Count returns indexed entity counts by type.
func (s *ChromemIndex) Count(ctx context.Context, entityType string) (int64, error) {
	return int64(s.collectionFor(entityType).Count()), nil
}

// Close releases resources.
func (s *ChromemIndex) Close() error {
	// chromem-go persists automatically, no explicit close needed
	return nil
}

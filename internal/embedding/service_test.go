package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/devmatch/internal/models"
)

// fakeProvider returns deterministic vectors derived from text length
// and counts model calls.
type fakeProvider struct {
	mu         sync.Mutex
	calls      int
	batchCalls int
	fail       bool
	failTexts  map[string]bool
}

func (f *fakeProvider) vector(text string) []float32 {
	return []float32{float32(len(text)), 1, 0}
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.New("model down")
	}
	return f.vector(text), nil
}

func (f *fakeProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.fail {
		return nil, errors.New("model down")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if f.failTexts[text] {
			continue // nil entry marks a per-item failure
		}
		out[i] = f.vector(text)
	}
	return out, nil
}

func (f *fakeProvider) ModelVersion() string { return "fake-embed-v1" }

func (f *fakeProvider) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls + f.batchCalls
}

func testService(t *testing.T, provider Provider) *Service {
	t.Helper()
	svc, err := NewService(provider, nil, models.EmbeddingConfig{MaxTokens: 100}, nil)
	require.NoError(t, err)
	return svc
}

func TestGenerate_ReturnsVector(t *testing.T) {
	provider := &fakeProvider{}
	svc := testService(t, provider)

	vec, err := svc.Generate(context.Background(), "python developer")
	require.NoError(t, err)
	assert.Len(t, vec, 3)
}

func TestGenerate_CachesByNormalizedText(t *testing.T) {
	provider := &fakeProvider{}
	svc := testService(t, provider)

	first, err := svc.Generate(context.Background(), "Python  Developer")
	require.NoError(t, err)

	// Different raw spelling, same normalized text: no new model call.
	second, err := svc.Generate(context.Background(), "python developer")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.totalCalls(), "repeat of normalized text must hit the cache")
}

func TestGenerate_EmptyTextUnavailable(t *testing.T) {
	svc := testService(t, &fakeProvider{})

	_, err := svc.Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestGenerate_ModelFailureWrapsUnavailable(t *testing.T) {
	svc := testService(t, &fakeProvider{fail: true})

	_, err := svc.Generate(context.Background(), "python")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestGenerateBatch_SingleModelCallForMisses(t *testing.T) {
	provider := &fakeProvider{}
	svc := testService(t, provider)

	items := svc.GenerateBatch(context.Background(), []string{"go", "rust", "python"})
	require.Len(t, items, 3)
	for _, item := range items {
		assert.NoError(t, item.Err)
		assert.NotNil(t, item.Vector)
	}
	assert.Equal(t, 1, provider.totalCalls(), "all misses must share one batch call")
}

func TestGenerateBatch_ChunksByBatchSize(t *testing.T) {
	provider := &fakeProvider{}
	svc, err := NewService(provider, nil, models.EmbeddingConfig{MaxTokens: 100, BatchSize: 2}, nil)
	require.NoError(t, err)

	items := svc.GenerateBatch(context.Background(), []string{"go", "rust", "python", "java", "c"})
	require.Len(t, items, 5)
	for _, item := range items {
		assert.NoError(t, item.Err)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Equal(t, 3, provider.batchCalls, "5 misses at batch size 2 need 3 model calls")
}

func TestGenerate_DimensionMismatchUnavailable(t *testing.T) {
	// fakeProvider emits 3-dimensional vectors.
	svc, err := NewService(&fakeProvider{}, nil, models.EmbeddingConfig{MaxTokens: 100, Dimension: 4}, nil)
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), "python")
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestGenerateBatch_DimensionMismatchMarksItems(t *testing.T) {
	svc, err := NewService(&fakeProvider{}, nil, models.EmbeddingConfig{MaxTokens: 100, Dimension: 4}, nil)
	require.NoError(t, err)

	items := svc.GenerateBatch(context.Background(), []string{"go", "rust"})
	for _, item := range items {
		assert.ErrorIs(t, item.Err, ErrEmbeddingUnavailable)
		assert.Nil(t, item.Vector)
	}
}

func TestGenerateBatch_ServesCachedItems(t *testing.T) {
	provider := &fakeProvider{}
	svc := testService(t, provider)

	_, err := svc.Generate(context.Background(), "go")
	require.NoError(t, err)

	items := svc.GenerateBatch(context.Background(), []string{"go", "rust"})
	require.Len(t, items, 2)
	assert.NoError(t, items[0].Err)
	assert.NoError(t, items[1].Err)
	// One call for "go", one batch call for the remaining miss.
	assert.Equal(t, 2, provider.totalCalls())
}

func TestGenerateBatch_PartialFailure(t *testing.T) {
	provider := &fakeProvider{failTexts: map[string]bool{"rust": true}}
	svc := testService(t, provider)

	items := svc.GenerateBatch(context.Background(), []string{"go", "rust", "python"})
	require.Len(t, items, 3)

	assert.NoError(t, items[0].Err)
	assert.ErrorIs(t, items[1].Err, ErrEmbeddingUnavailable)
	assert.Nil(t, items[1].Vector)
	assert.NoError(t, items[2].Err, "other items must survive a per-item failure")
}

func TestGenerateBatch_WholeBatchFailure(t *testing.T) {
	provider := &fakeProvider{fail: true}
	svc := testService(t, provider)

	items := svc.GenerateBatch(context.Background(), []string{"go", "rust"})
	for _, item := range items {
		assert.ErrorIs(t, item.Err, ErrEmbeddingUnavailable)
	}
}

func TestGenerateBatch_EmptyTextMarked(t *testing.T) {
	provider := &fakeProvider{}
	svc := testService(t, provider)

	items := svc.GenerateBatch(context.Background(), []string{"", "go"})
	assert.ErrorIs(t, items[0].Err, ErrEmbeddingUnavailable)
	assert.NoError(t, items[1].Err)
}

func TestProfileEmbedding(t *testing.T) {
	svc := testService(t, &fakeProvider{})

	dev := &models.Developer{
		ID:              "d1",
		Bio:             "Backend engineer",
		Skills:          []string{"python", "django"},
		ExperienceLevel: "senior",
	}

	vecs, err := svc.ProfileEmbedding(context.Background(), dev)
	require.NoError(t, err)
	assert.NotEmpty(t, vecs.Skills)
	assert.NotEmpty(t, vecs.Experience)
}

func TestProfileEmbedding_FailurePropagatesUnavailable(t *testing.T) {
	svc := testService(t, &fakeProvider{fail: true})

	dev := &models.Developer{ID: "d1", Skills: []string{"python"}, Bio: "engineer"}
	_, err := svc.ProfileEmbedding(context.Background(), dev)
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}

func TestRequirementEmbedding(t *testing.T) {
	svc := testService(t, &fakeProvider{})

	project := &models.Project{
		ID:             "p1",
		Title:          "Marketplace",
		Description:    "Build an API",
		RequiredSkills: []string{"python"},
	}

	vecs, err := svc.RequirementEmbedding(context.Background(), project)
	require.NoError(t, err)
	assert.NotEmpty(t, vecs.Description)
	assert.NotEmpty(t, vecs.Requirements)
}

func TestModelVersion(t *testing.T) {
	svc := testService(t, &fakeProvider{})
	assert.Equal(t, "fake-embed-v1", svc.ModelVersion())
}

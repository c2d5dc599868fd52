package embedding

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIProvider implements Provider using OpenAI API.
type OpenAIProvider struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	limiter *rate.Limiter
	timeout time.Duration
}

// NewOpenAI creates a new OpenAI embedding provider. requestsPerMinute
// bounds the call rate; timeout bounds each request.
func NewOpenAI(apiKey string, model string, requestsPerMinute int, timeout time.Duration) *OpenAIProvider {
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 3000
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenAIProvider{
		client:  openai.NewClient(apiKey),
		model:   openai.EmbeddingModel(model),
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute/60+1),
		timeout: timeout,
	}
}

// ModelVersion identifies the embedding model.
func (p *OpenAIProvider) ModelVersion() string {
	return string(p.model)
}

// Embed generates an embedding for a single text string.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple text strings.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	result := make([][]float32, len(texts))
	for i, data := range resp.Data {
		if i < len(result) {
			result[i] = data.Embedding
		}
	}

	return result, nil
}

package index

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// Embedder turns text into vectors. Implementations must return one
// vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls the OpenAI embeddings API, or any compatible
// endpoint via base URL override.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder. Common models:
// "text-embedding-3-small" (1536 dims), "text-embedding-3-large"
// (3072 dims).
func NewOpenAIEmbedder(apiKey, model, baseURL string) *OpenAIEmbedder {
	if model == "" {
		model = "text-embedding-3-small"
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

// EmbedBatch implements Embedder.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		vectors[data.Index] = data.Embedding
	}
	return vectors, nil
}

// NoopEmbedder returns zero vectors. With the hybrid backend this
// degrades retrieval to keyword-only ranking, which keeps the service
// usable without an embeddings key.
type NoopEmbedder struct {
	dimension int
}

// NewNoopEmbedder creates a no-op embedder.
func NewNoopEmbedder(dimension int) *NoopEmbedder {
	if dimension <= 0 {
		dimension = 384
	}
	return &NoopEmbedder{dimension: dimension}
}

// Embed implements Embedder.
func (e *NoopEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, e.dimension), nil
}

// EmbedBatch implements Embedder.
func (e *NoopEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, e.dimension)
	}
	return vectors, nil
}

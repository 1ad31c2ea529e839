package embedding

import (
	"context"
	"fmt"

	"corpora/src/infrastructure/integrations/ollama"
)

const (
	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "nomic-embed-text"

	// DefaultDimension is the output dimension of the default model.
	DefaultDimension = 768
)

// OllamaEmbedder produces embeddings through an Ollama embeddings
// endpoint. Vectors are L2-normalized before being returned.
type OllamaEmbedder struct {
	client    *ollama.Client
	model     string
	dimension int
}

func NewOllamaEmbedder(client *ollama.Client, model string, dimension int) *OllamaEmbedder {
	if model == "" {
		model = DefaultModel
	}
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &OllamaEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.client.GetEmbedding(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(vector) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vector), e.dimension)
	}
	return Normalize(vector), nil
}

func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d of %d: %w", i+1, len(texts), err)
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

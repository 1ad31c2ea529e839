package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultMaxChars is the document length above which text is split
	// before embedding, to stay inside the embedding model's context.
	DefaultMaxChars = 8000

	defaultChunkSize    = 2000
	defaultChunkOverlap = 200
)

// ChunkingEmbedder wraps another Embedder and handles documents that
// exceed the embedding model's context: the text is split with a
// recursive character splitter, each chunk embedded, and the chunk
// vectors mean-pooled and renormalized. Every document still yields
// exactly one vector.
type ChunkingEmbedder struct {
	inner    Embedder
	maxChars int
	splitter textsplitter.RecursiveCharacter
}

func NewChunkingEmbedder(inner Embedder, maxChars int) *ChunkingEmbedder {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &ChunkingEmbedder{
		inner:    inner,
		maxChars: maxChars,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(defaultChunkSize),
			textsplitter.WithChunkOverlap(defaultChunkOverlap),
		),
	}
}

func (e *ChunkingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) <= e.maxChars {
		return e.inner.Embed(ctx, text)
	}

	chunks, err := e.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split document: %w", err)
	}
	if len(chunks) == 0 {
		return e.inner.Embed(ctx, text)
	}

	vectors, err := e.inner.EmbedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}

	return Normalize(mean(vectors)), nil
}

func (e *ChunkingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed document %d of %d: %w", i+1, len(texts), err)
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

func (e *ChunkingEmbedder) Dimension() int {
	return e.inner.Dimension()
}

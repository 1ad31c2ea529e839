package vectorindex

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"

	"corpora/src/fsutil"
)

// Flat is an exact inner-product similarity index over a dense matrix.
// Callers are expected to add pre-normalized vectors; scores then rank
// by cosine similarity.
type Flat struct {
	dim     int
	vectors [][]float32
}

// Hit is one nearest-neighbor result: the similarity score and the row
// id of the matching vector in insertion order.
type Hit struct {
	Score float32 `json:"score"`
	Row   int     `json:"row"`
}

func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

func (f *Flat) Dimension() int {
	return f.dim
}

func (f *Flat) Len() int {
	return len(f.vectors)
}

// Add appends vectors to the index in order.
func (f *Flat) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), f.dim)
		}
	}
	f.vectors = append(f.vectors, vectors...)
	return nil
}

// Search returns the k highest-scoring rows for the query vector,
// fewer when the index holds fewer than k vectors.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), f.dim)
	}
	if k <= 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, len(f.vectors))
	for i, v := range f.vectors {
		hits[i] = Hit{Score: dot(v, query), Row: i}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// flatArtifact is the on-disk representation of a Flat index.
type flatArtifact struct {
	Dim     int
	Vectors [][]float32
}

// WriteFile serializes the index to a single artifact file.
func (f *Flat) WriteFile(fs fsutil.FileStore, path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(flatArtifact{Dim: f.dim, Vectors: f.vectors}); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if err := fs.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// ReadFlat deserializes an index artifact file.
func ReadFlat(fs fsutil.FileStore, path string) (*Flat, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	var artifact flatArtifact
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return &Flat{dim: artifact.Dim, vectors: artifact.Vectors}, nil
}

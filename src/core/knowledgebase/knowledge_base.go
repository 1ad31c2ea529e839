package knowledgebase

import (
	"context"
	"fmt"

	"corpora/src/embedding"
	"corpora/src/log"
	"corpora/src/storage/tenantstore"
	"corpora/src/vectorindex"
)

const (
	// DefaultTopK is the number of passages returned when the caller
	// does not ask for a specific k.
	DefaultTopK = 5

	// snippetLimit caps the content returned per search hit.
	snippetLimit = 500
)

// SearchResult is one ranked passage from a tenant's corpus.
type SearchResult struct {
	Rank     int                      `json:"rank"`
	Score    float32                  `json:"score"`
	Content  string                   `json:"content"`
	Metadata vectorindex.DocumentMeta `json:"metadata"`
	TenantID int64                    `json:"tenant_id"`
}

// Service is the tenant-facing knowledge base façade: it owns the
// upload → extract → embed → index → retrieve flow.
type Service struct {
	docs     tenantstore.DocumentStore
	embedder embedding.Embedder
	index    *vectorindex.Manager
}

func NewService(docs tenantstore.DocumentStore, embedder embedding.Embedder, index *vectorindex.Manager) *Service {
	return &Service{
		docs:     docs,
		embedder: embedder,
		index:    index,
	}
}

// UploadDocument persists one document for the tenant. The index is not
// rebuilt here; callers rebuild explicitly or on delete.
func (s *Service) UploadDocument(ctx context.Context, tenantID int64, filename string, content []byte) (*tenantstore.StoredDocument, error) {
	doc, err := s.docs.Save(ctx, tenantID, filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes one document and unconditionally rebuilds the
// tenant's index from the remaining corpus. Returns false when the
// document did not exist; existing artifacts are then left untouched.
func (s *Service) DeleteDocument(ctx context.Context, tenantID int64, name string) (bool, error) {
	removed, err := s.docs.Delete(ctx, tenantID, name)
	if err != nil {
		return false, err
	}
	if !removed {
		return false, nil
	}

	if _, err := s.index.Build(ctx, tenantID); err != nil {
		return true, fmt.Errorf("document deleted but index rebuild failed: %w", err)
	}
	return true, nil
}

// BuildIndex rebuilds the tenant's index from the current document
// snapshot. Returns false when the tenant has no indexable documents.
func (s *Service) BuildIndex(ctx context.Context, tenantID int64) (bool, error) {
	return s.index.Build(ctx, tenantID)
}

// Search embeds the query and returns up to k ranked passages. A tenant
// with no index gets an empty result list; that is a normal state, not
// an error.
func (s *Service) Search(ctx context.Context, tenantID int64, query string, k int) ([]SearchResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, ti, err := s.index.Search(ctx, tenantID, vector, k)
	if err != nil {
		return nil, err
	}
	if ti == nil {
		log.Debug("no index for tenant", "tenant", tenantID)
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(hits))
	for i, hit := range hits {
		if hit.Row < 0 || hit.Row >= len(ti.Texts) {
			continue
		}
		results = append(results, SearchResult{
			Rank:     i + 1,
			Score:    hit.Score,
			Content:  truncate(ti.Texts[hit.Row], snippetLimit),
			Metadata: ti.Metadata[hit.Row],
			TenantID: tenantID,
		})
	}

	return results, nil
}

// ListDocuments enumerates the tenant's stored documents.
func (s *Service) ListDocuments(ctx context.Context, tenantID int64) ([]tenantstore.StoredDocument, error) {
	return s.docs.List(ctx, tenantID)
}

// ClearTenant discards the tenant's documents and index artifacts.
// Idempotent; used for account deletion.
func (s *Service) ClearTenant(ctx context.Context, tenantID int64) error {
	if err := s.docs.Wipe(ctx, tenantID); err != nil {
		return err
	}
	if err := s.index.Wipe(ctx, tenantID); err != nil {
		return err
	}
	return nil
}

// truncate cuts at a rune boundary so multi-byte text never yields a
// broken trailing sequence.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

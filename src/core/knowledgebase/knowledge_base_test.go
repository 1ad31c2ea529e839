package knowledgebase_test

import (
	"context"
	"hash/fnv"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"corpora/src/core/knowledgebase"
	"corpora/src/embedding"
	"corpora/src/fsutil"
	"corpora/src/storage/tenantstore"
	"corpora/src/textextract"
	"corpora/src/vectorindex"
)

type hashEmbedder struct {
	dim int
}

func (e hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, e.dim)
	for i := range v {
		h := fnv.New32a()
		h.Write([]byte(text))
		h.Write([]byte{byte(i)})
		v[i] = float32(h.Sum32()%1000) + 1
	}
	return embedding.Normalize(v), nil
}

func (e hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e hashEmbedder) Dimension() int { return e.dim }

func newService(t *testing.T) *knowledgebase.Service {
	t.Helper()
	fs := fsutil.NewLocalFileStore()
	root := t.TempDir()
	docs := tenantstore.NewLocalStore(fs, filepath.Join(root, "documents"))
	embedder := hashEmbedder{dim: 8}
	manager := vectorindex.NewManager(docs, textextract.NewExtractor(nil), embedder, fs, filepath.Join(root, "indexes"))
	return knowledgebase.NewService(docs, embedder, manager)
}

func TestUploadBuildSearch(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if _, err := svc.UploadDocument(ctx, 1, "hello.txt", []byte("The sky is blue.")); err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	built, err := svc.BuildIndex(ctx, 1)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if !built {
		t.Fatal("BuildIndex() = false, want true")
	}

	results, err := svc.Search(ctx, 1, "what color is the sky", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if results[0].Rank != 1 {
		t.Errorf("Rank = %d, want 1", results[0].Rank)
	}
	if !strings.HasPrefix(results[0].Content, "The sky is blue.") {
		t.Errorf("Content = %q, want prefix %q", results[0].Content, "The sky is blue.")
	}
	if results[0].TenantID != 1 {
		t.Errorf("TenantID = %d, want 1", results[0].TenantID)
	}
}

func TestSearchWithoutIndexIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	results, err := svc.Search(ctx, 1, "anything", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty tenant returned %d results", len(results))
	}
}

func TestSearchIsTenantIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if _, err := svc.UploadDocument(ctx, 1, "secret.txt", []byte("tenant one secret")); err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if _, err := svc.BuildIndex(ctx, 1); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	results, err := svc.Search(ctx, 2, "tenant one secret", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("tenant 2 search returned %d results from tenant 1", len(results))
	}

	docs, err := svc.ListDocuments(ctx, 2)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("tenant 2 list returned %d documents from tenant 1", len(docs))
	}
}

func TestSearchTruncatesContent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	long := strings.Repeat("a", 600)
	if _, err := svc.UploadDocument(ctx, 1, "long.txt", []byte(long)); err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if _, err := svc.BuildIndex(ctx, 1); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	results, err := svc.Search(ctx, 1, "query", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if len(results[0].Content) != 503 {
		t.Errorf("Content length = %d, want 503", len(results[0].Content))
	}
	if !strings.HasSuffix(results[0].Content, "...") {
		t.Errorf("Content = %q, want ellipsis suffix", results[0].Content)
	}
}

func TestSearchTruncatesAtRuneBoundary(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	long := strings.Repeat("界", 600)
	if _, err := svc.UploadDocument(ctx, 1, "cjk.txt", []byte(long)); err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if _, err := svc.BuildIndex(ctx, 1); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	results, err := svc.Search(ctx, 1, "query", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() returned %d results, want 1", len(results))
	}
	if !utf8.ValidString(results[0].Content) {
		t.Error("truncated content is not valid UTF-8")
	}
	if got := utf8.RuneCountInString(results[0].Content); got != 503 {
		t.Errorf("rune count = %d, want 500 runes plus ellipsis", got)
	}
	if !strings.HasSuffix(results[0].Content, "...") {
		t.Errorf("Content = %q, want ellipsis suffix", results[0].Content)
	}
}

func TestDeleteMissingDocument(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if _, err := svc.UploadDocument(ctx, 1, "keep.txt", []byte("kept document")); err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if _, err := svc.BuildIndex(ctx, 1); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	removed, err := svc.DeleteDocument(ctx, 1, "no_such_file.txt")
	if err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if removed {
		t.Error("DeleteDocument() = true for missing document")
	}

	// The existing index must be untouched.
	results, err := svc.Search(ctx, 1, "kept document", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Search() after failed delete returned %d results, want 1", len(results))
	}
}

func TestDeleteLastDocumentLeavesIndexAbsent(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	doc, err := svc.UploadDocument(ctx, 1, "only.txt", []byte("the only document"))
	if err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if _, err := svc.BuildIndex(ctx, 1); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	removed, err := svc.DeleteDocument(ctx, 1, doc.Name)
	if err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if !removed {
		t.Fatal("DeleteDocument() = false for existing document")
	}

	results, err := svc.Search(ctx, 1, "the only document", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() after deleting last document returned %d results", len(results))
	}
}

func TestClearTenant(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if _, err := svc.UploadDocument(ctx, 1, "a.txt", []byte("data")); err != nil {
		t.Fatalf("UploadDocument() error = %v", err)
	}
	if _, err := svc.BuildIndex(ctx, 1); err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	if err := svc.ClearTenant(ctx, 1); err != nil {
		t.Fatalf("ClearTenant() error = %v", err)
	}
	if err := svc.ClearTenant(ctx, 1); err != nil {
		t.Errorf("second ClearTenant() error = %v, want nil", err)
	}

	docs, err := svc.ListDocuments(ctx, 1)
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("ListDocuments() after clear returned %d documents", len(docs))
	}

	results, err := svc.Search(ctx, 1, "data", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() after clear returned %d results", len(results))
	}
}

package vectorindex

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"corpora/src/embedding"
	"corpora/src/fsutil"
	"corpora/src/log"
	"corpora/src/storage/tenantstore"
	"corpora/src/textextract"
)

const (
	indexFile     = "flat.index"
	metadataFile  = "metadata.gob"
	documentsFile = "documents.gob"
)

// DocumentMeta describes one indexed document, stored parallel to the
// embedding matrix: row i of the index corresponds to Metadata[i] and
// Texts[i].
type DocumentMeta struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int    `json:"size"`
	TenantID int64  `json:"tenant_id"`
}

// TenantIndex is one loaded artifact generation for a tenant. Row ids
// returned by Search are valid only against this value's Texts and
// Metadata.
type TenantIndex struct {
	Index    *Flat
	Texts    []string
	Metadata []DocumentMeta
}

// Search delegates to the flat index.
func (t *TenantIndex) Search(query []float32, k int) ([]Hit, error) {
	return t.Index.Search(query, k)
}

// Manager builds, persists, loads and queries the per-tenant artifact
// set (index + parallel metadata and raw-text arrays) under
// <root>/user_<id>/.
//
// A per-tenant mutex serializes Build against Load, so a search always
// observes a complete artifact generation, never a half-written one.
type Manager struct {
	docs      tenantstore.DocumentStore
	extractor *textextract.Extractor
	embedder  embedding.Embedder
	fs        fsutil.FileStore
	root      string

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewManager(docs tenantstore.DocumentStore, extractor *textextract.Extractor, embedder embedding.Embedder, fs fsutil.FileStore, root string) *Manager {
	return &Manager{
		docs:      docs,
		extractor: extractor,
		embedder:  embedder,
		fs:        fs,
		root:      root,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// IndexDir returns the artifact directory for one tenant.
func (m *Manager) IndexDir(tenantID int64) string {
	return filepath.Join(m.root, fmt.Sprintf("user_%d", tenantID))
}

func (m *Manager) tenantLock(tenantID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[tenantID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[tenantID] = lock
	}
	return lock
}

// Build recomputes the tenant's index from the current document
// snapshot: every supported document is extracted, documents that yield
// empty or whitespace-only text are discarded, the survivors are
// embedded in one batch and persisted together with parallel metadata
// and raw-text arrays. Returns false when zero documents survive; the
// tenant's artifacts are then removed so the index reads as absent.
func (m *Manager) Build(ctx context.Context, tenantID int64) (bool, error) {
	lock := m.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	stored, err := m.docs.List(ctx, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to list tenant documents: %w", err)
	}

	var (
		texts []string
		metas []DocumentMeta
	)
	for _, doc := range stored {
		if !m.extractor.Supported(doc.Name) {
			log.Warn("skipping unsupported document", "tenant", tenantID, "name", doc.Name)
			continue
		}

		content, err := m.docs.Read(ctx, tenantID, doc.Name)
		if err != nil {
			log.Error(err, "failed to read document, skipping", "tenant", tenantID, "name", doc.Name)
			continue
		}

		text, ok := m.extractor.Extract(ctx, doc.Name, content)
		if !ok {
			continue
		}
		if strings.TrimSpace(text) == "" {
			log.Warn("document produced no text", "tenant", tenantID, "name", doc.Name)
			continue
		}

		texts = append(texts, text)
		metas = append(metas, DocumentMeta{
			Filename: doc.Name,
			Path:     doc.Path,
			Size:     len(text),
			TenantID: tenantID,
		})
	}

	if len(texts) == 0 {
		log.Warn("no documents to index, removing artifacts", "tenant", tenantID)
		if err := m.removeArtifacts(tenantID); err != nil {
			return false, err
		}
		return false, nil
	}

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("failed to embed documents: %w", err)
	}

	index := NewFlat(m.embedder.Dimension())
	if err := index.Add(vectors); err != nil {
		return false, fmt.Errorf("failed to populate index: %w", err)
	}

	dir := m.IndexDir(tenantID)
	if err := m.fs.MakeDirectory(dir); err != nil {
		return false, fmt.Errorf("failed to create index directory: %w", err)
	}

	if err := index.WriteFile(m.fs, filepath.Join(dir, indexFile)); err != nil {
		return false, err
	}
	if err := writeGob(m.fs, filepath.Join(dir, metadataFile), metas); err != nil {
		return false, fmt.Errorf("failed to write metadata: %w", err)
	}
	if err := writeGob(m.fs, filepath.Join(dir, documentsFile), texts); err != nil {
		return false, fmt.Errorf("failed to write documents: %w", err)
	}

	log.Info("built tenant index", "tenant", tenantID, "documents", len(texts))
	return true, nil
}

// Load returns the tenant's persisted index generation, or nil when no
// complete artifact set exists. Corrupt artifacts degrade to absent.
func (m *Manager) Load(ctx context.Context, tenantID int64) (*TenantIndex, error) {
	lock := m.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	return m.loadLocked(tenantID)
}

func (m *Manager) loadLocked(tenantID int64) (*TenantIndex, error) {
	dir := m.IndexDir(tenantID)
	paths := []string{
		filepath.Join(dir, indexFile),
		filepath.Join(dir, metadataFile),
		filepath.Join(dir, documentsFile),
	}
	for _, p := range paths {
		if !m.fs.Exists(p) {
			return nil, nil
		}
	}

	index, err := ReadFlat(m.fs, paths[0])
	if err != nil {
		log.Error(err, "corrupt index artifact, treating as absent", "tenant", tenantID)
		return nil, nil
	}

	var metas []DocumentMeta
	if err := readGob(m.fs, paths[1], &metas); err != nil {
		log.Error(err, "corrupt metadata artifact, treating as absent", "tenant", tenantID)
		return nil, nil
	}

	var texts []string
	if err := readGob(m.fs, paths[2], &texts); err != nil {
		log.Error(err, "corrupt documents artifact, treating as absent", "tenant", tenantID)
		return nil, nil
	}

	if index.Len() != len(metas) || index.Len() != len(texts) {
		log.Error(fmt.Errorf("artifact lengths disagree: index=%d metadata=%d documents=%d", index.Len(), len(metas), len(texts)),
			"inconsistent artifact set, treating as absent", "tenant", tenantID)
		return nil, nil
	}

	return &TenantIndex{Index: index, Texts: texts, Metadata: metas}, nil
}

// Search loads the tenant's current generation and queries it. Returns
// the hits together with the generation they are valid against; both
// are nil when no index exists.
func (m *Manager) Search(ctx context.Context, tenantID int64, query []float32, k int) ([]Hit, *TenantIndex, error) {
	lock := m.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	ti, err := m.loadLocked(tenantID)
	if err != nil {
		return nil, nil, err
	}
	if ti == nil {
		return nil, nil, nil
	}

	hits, err := ti.Search(query, k)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search index: %w", err)
	}
	return hits, ti, nil
}

// Wipe removes the tenant's artifact directory. Idempotent.
func (m *Manager) Wipe(ctx context.Context, tenantID int64) error {
	lock := m.tenantLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.fs.RemoveAll(m.IndexDir(tenantID)); err != nil {
		return fmt.Errorf("failed to wipe tenant index: %w", err)
	}
	return nil
}

func (m *Manager) removeArtifacts(tenantID int64) error {
	dir := m.IndexDir(tenantID)
	for _, name := range []string{indexFile, metadataFile, documentsFile} {
		if _, err := m.fs.Remove(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("failed to remove artifact %s: %w", name, err)
		}
	}
	return nil
}

func writeGob(fs fsutil.FileStore, path string, value interface{}) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return err
	}
	return fs.WriteFile(path, buf.Bytes())
}

func readGob(fs fsutil.FileStore, path string, out interface{}) error {
	data, err := fs.ReadFile(path)
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(out)
}

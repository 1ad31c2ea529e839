package tenantstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"corpora/src/fsutil"
	"corpora/src/log"
)

// StoredDocument describes one raw document held for a tenant.
// Name is the collision-free storage name; OriginalName is the name
// the caller uploaded it under.
type StoredDocument struct {
	TenantID     int64     `json:"tenant_id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	StoredAt     time.Time `json:"stored_at"`
}

// DocumentStore abstracts where a tenant's raw documents live.
// Every operation is partitioned by tenant ID; no call can reach
// another tenant's namespace.
type DocumentStore interface {
	// Save persists content under a generated collision-free name and
	// returns the stored document descriptor. It never overwrites.
	Save(ctx context.Context, tenantID int64, filename string, content []byte) (*StoredDocument, error)

	// List enumerates the documents directly under the tenant's namespace.
	List(ctx context.Context, tenantID int64) ([]StoredDocument, error)

	// Read returns the raw bytes of one stored document.
	Read(ctx context.Context, tenantID int64, name string) ([]byte, error)

	// Delete removes one document; reports whether it existed.
	Delete(ctx context.Context, tenantID int64, name string) (bool, error)

	// Wipe removes the tenant's whole document namespace. Idempotent.
	Wipe(ctx context.Context, tenantID int64) error

	// Tenants enumerates every tenant with at least one stored document.
	Tenants(ctx context.Context) ([]int64, error)
}

// ErrInvalidName marks a document name that could escape the tenant's
// namespace.
var ErrInvalidName = errors.New("invalid document name")

// ValidName reports whether name is a plain file name: non-empty, not
// a directory reference, and free of path separators.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

// LocalStore keeps tenant documents under <root>/user_<id>/ on the
// local filesystem, creating directories lazily on first access.
type LocalStore struct {
	fs   fsutil.FileStore
	root string
}

func NewLocalStore(fs fsutil.FileStore, root string) *LocalStore {
	return &LocalStore{fs: fs, root: root}
}

// TenantDir returns the document directory for one tenant.
func (s *LocalStore) TenantDir(tenantID int64) string {
	return filepath.Join(s.root, tenantDirName(tenantID))
}

func (s *LocalStore) Save(ctx context.Context, tenantID int64, filename string, content []byte) (*StoredDocument, error) {
	dir := s.TenantDir(tenantID)
	if err := s.fs.MakeDirectory(dir); err != nil {
		return nil, fmt.Errorf("failed to create tenant directory: %w", err)
	}

	name := StorageName(filename)
	path := filepath.Join(dir, name)
	if err := s.fs.WriteFile(path, content); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	log.Info("saved tenant document", "tenant", tenantID, "filename", filename, "stored", name)
	return &StoredDocument{
		TenantID:     tenantID,
		Name:         name,
		OriginalName: filename,
		Path:         path,
		Size:         int64(len(content)),
		StoredAt:     time.Now().UTC(),
	}, nil
}

func (s *LocalStore) List(ctx context.Context, tenantID int64) ([]StoredDocument, error) {
	dir := s.TenantDir(tenantID)
	files, err := s.fs.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant documents: %w", err)
	}

	docs := make([]StoredDocument, 0, len(files))
	for _, f := range files {
		docs = append(docs, StoredDocument{
			TenantID:     tenantID,
			Name:         f.Name,
			OriginalName: OriginalName(f.Name),
			Path:         filepath.Join(dir, f.Name),
			Size:         f.Size,
			StoredAt:     f.ModTime,
		})
	}

	return docs, nil
}

func (s *LocalStore) Read(ctx context.Context, tenantID int64, name string) ([]byte, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return s.fs.ReadFile(filepath.Join(s.TenantDir(tenantID), name))
}

func (s *LocalStore) Delete(ctx context.Context, tenantID int64, name string) (bool, error) {
	if !ValidName(name) {
		return false, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	removed, err := s.fs.Remove(filepath.Join(s.TenantDir(tenantID), name))
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	if removed {
		log.Info("deleted tenant document", "tenant", tenantID, "name", name)
	}
	return removed, nil
}

func (s *LocalStore) Wipe(ctx context.Context, tenantID int64) error {
	if err := s.fs.RemoveAll(s.TenantDir(tenantID)); err != nil {
		return fmt.Errorf("failed to wipe tenant documents: %w", err)
	}
	log.Info("wiped tenant documents", "tenant", tenantID)
	return nil
}

func (s *LocalStore) Tenants(ctx context.Context) ([]int64, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan tenant directories: %w", err)
	}

	tenants := make([]int64, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var id int64
		if _, err := fmt.Sscanf(entry.Name(), "user_%d", &id); err != nil {
			continue
		}
		tenants = append(tenants, id)
	}

	return tenants, nil
}

func tenantDirName(tenantID int64) string {
	return fmt.Sprintf("user_%d", tenantID)
}

// StorageName generates a collision-free storage name for an upload,
// so concurrent uploads of same-named files never clash.
func StorageName(filename string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token + "_" + filepath.Base(filename)
}

// OriginalName recovers the uploaded filename from a storage name.
func OriginalName(storageName string) string {
	if _, rest, ok := strings.Cut(storageName, "_"); ok && rest != "" {
		return rest
	}
	return storageName
}

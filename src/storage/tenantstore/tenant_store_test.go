package tenantstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"corpora/src/fsutil"
	"corpora/src/storage/tenantstore"
)

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	store := tenantstore.NewLocalStore(fsutil.NewLocalFileStore(), t.TempDir())

	doc, err := store.Save(ctx, 1, "notes.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if doc.OriginalName != "notes.txt" {
		t.Errorf("OriginalName = %q, want %q", doc.OriginalName, "notes.txt")
	}
	if !strings.HasSuffix(doc.Name, "_notes.txt") {
		t.Errorf("Name = %q, want suffix %q", doc.Name, "_notes.txt")
	}
	if doc.Size != 5 {
		t.Errorf("Size = %d, want 5", doc.Size)
	}

	docs, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("List() returned %d documents, want 1", len(docs))
	}
	if docs[0].Name != doc.Name {
		t.Errorf("listed name = %q, want %q", docs[0].Name, doc.Name)
	}

	content, err := store.Read(ctx, 1, doc.Name)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("Read() = %q, want %q", content, "hello")
	}
}

func TestSaveNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	store := tenantstore.NewLocalStore(fsutil.NewLocalFileStore(), t.TempDir())

	first, err := store.Save(ctx, 1, "report.txt", []byte("one"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := store.Save(ctx, 1, "report.txt", []byte("two"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first.Name == second.Name {
		t.Errorf("same storage name %q for two uploads of the same filename", first.Name)
	}

	docs, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("List() returned %d documents, want 2", len(docs))
	}
}

func TestTenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := tenantstore.NewLocalStore(fsutil.NewLocalFileStore(), t.TempDir())

	if _, err := store.Save(ctx, 1, "a.txt", []byte("tenant one")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	docs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("tenant 2 sees %d documents from tenant 1", len(docs))
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := tenantstore.NewLocalStore(fsutil.NewLocalFileStore(), t.TempDir())

	doc, err := store.Save(ctx, 1, "a.txt", []byte("data"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	removed, err := store.Delete(ctx, 1, doc.Name)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !removed {
		t.Error("Delete() = false for existing document")
	}

	removed, err = store.Delete(ctx, 1, doc.Name)
	if err != nil {
		t.Fatalf("Delete() second call error = %v", err)
	}
	if removed {
		t.Error("Delete() = true for missing document")
	}
}

func TestWipeIdempotent(t *testing.T) {
	ctx := context.Background()
	store := tenantstore.NewLocalStore(fsutil.NewLocalFileStore(), t.TempDir())

	if _, err := store.Save(ctx, 1, "a.txt", []byte("data")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Wipe(ctx, 1); err != nil {
		t.Fatalf("Wipe() error = %v", err)
	}
	if err := store.Wipe(ctx, 1); err != nil {
		t.Errorf("second Wipe() error = %v, want nil", err)
	}

	docs, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() after wipe error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("List() after wipe returned %d documents", len(docs))
	}
}

func TestTenants(t *testing.T) {
	ctx := context.Background()
	store := tenantstore.NewLocalStore(fsutil.NewLocalFileStore(), t.TempDir())

	tenants, err := store.Tenants(ctx)
	if err != nil {
		t.Fatalf("Tenants() error = %v", err)
	}
	if len(tenants) != 0 {
		t.Errorf("Tenants() on empty root = %v, want none", tenants)
	}

	for _, id := range []int64{3, 7} {
		if _, err := store.Save(ctx, id, "a.txt", []byte("data")); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	tenants, err = store.Tenants(ctx)
	if err != nil {
		t.Fatalf("Tenants() error = %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("Tenants() = %v, want two entries", tenants)
	}
}

func TestRejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	store := tenantstore.NewLocalStore(fsutil.NewLocalFileStore(), t.TempDir())

	names := []string{"", ".", "..", "../escape.txt", "a/b.txt", `a\b.txt`}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Read(ctx, 1, name); !errors.Is(err, tenantstore.ErrInvalidName) {
				t.Errorf("Read(%q) error = %v, want ErrInvalidName", name, err)
			}
			removed, err := store.Delete(ctx, 1, name)
			if !errors.Is(err, tenantstore.ErrInvalidName) {
				t.Errorf("Delete(%q) error = %v, want ErrInvalidName", name, err)
			}
			if removed {
				t.Errorf("Delete(%q) = true, want false", name)
			}
		})
	}
}

func TestOriginalName(t *testing.T) {
	tests := []struct {
		name        string
		storageName string
		want        string
	}{
		{
			name:        "token prefix",
			storageName: "abc123_report.pdf",
			want:        "report.pdf",
		},
		{
			name:        "underscore in original name",
			storageName: "abc123_my_report.pdf",
			want:        "my_report.pdf",
		},
		{
			name:        "no prefix",
			storageName: "plain.txt",
			want:        "plain.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tenantstore.OriginalName(tt.storageName)
			if got != tt.want {
				t.Errorf("OriginalName(%q) = %q, want %q", tt.storageName, got, tt.want)
			}
		})
	}
}

package minioctrl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"corpora/src/storage/minioctrl"
)

// bucketFake answers the two S3 calls EnsureBucketExists makes: HEAD
// bucket (existence probe) and PUT bucket (creation).
type bucketFake struct {
	mu      sync.Mutex
	exists  bool
	methods []string
}

func (f *bucketFake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methods = append(f.methods, r.Method)

	switch r.Method {
	case http.MethodGet:
		// minio-go resolves the bucket region before HEAD/PUT when the
		// client has no fixed region; answer the location lookup.
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/"/>`))
	case http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodPut:
		f.exists = true
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *bucketFake) seen(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.methods {
		if m == method {
			return true
		}
	}
	return false
}

func newFakeStore(t *testing.T, fake *bucketFake) *minioctrl.Store {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	endpoint := strings.TrimPrefix(server.URL, "http://")
	store, err := minioctrl.NewStore(endpoint, "access", "secret", "tenant-documents", false)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestEnsureBucketExistsCreatesMissingBucket(t *testing.T) {
	fake := &bucketFake{}
	store := newFakeStore(t, fake)

	if err := store.EnsureBucketExists(context.Background()); err != nil {
		t.Fatalf("EnsureBucketExists() error = %v", err)
	}
	if !fake.seen(http.MethodPut) {
		t.Error("missing bucket was not created")
	}
	if !fake.exists {
		t.Error("bucket still absent after EnsureBucketExists()")
	}
}

func TestEnsureBucketExistsKeepsExistingBucket(t *testing.T) {
	fake := &bucketFake{exists: true}
	store := newFakeStore(t, fake)

	if err := store.EnsureBucketExists(context.Background()); err != nil {
		t.Fatalf("EnsureBucketExists() error = %v", err)
	}
	if fake.seen(http.MethodPut) {
		t.Error("existing bucket was re-created")
	}
}

package minioctrl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"corpora/src/log"
	"corpora/src/storage/tenantstore"
)

// Store keeps tenant documents as objects under user_<id>/ prefixes in a
// single bucket. It is the object-storage alternative to the local
// filesystem document store.
type Store struct {
	client *minio.Client
	bucket string
}

func NewStore(endpoint, accessKeyID, secretAccessKey, bucket string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Store{client: client, bucket: bucket}, nil
}

// EnsureBucketExists creates the backing bucket if it is missing.
func (s *Store) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

func (s *Store) Save(ctx context.Context, tenantID int64, filename string, content []byte) (*tenantstore.StoredDocument, error) {
	name := tenantstore.StorageName(filename)
	key := s.objectKey(tenantID, name)

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object: %w", err)
	}

	log.Info("saved tenant document", "tenant", tenantID, "filename", filename, "key", key)
	return &tenantstore.StoredDocument{
		TenantID:     tenantID,
		Name:         name,
		OriginalName: filename,
		Path:         s.bucket + "/" + key,
		Size:         info.Size,
		StoredAt:     info.LastModified,
	}, nil
}

func (s *Store) List(ctx context.Context, tenantID int64) ([]tenantstore.StoredDocument, error) {
	prefix := s.tenantPrefix(tenantID)
	docs := []tenantstore.StoredDocument{}

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		docs = append(docs, tenantstore.StoredDocument{
			TenantID:     tenantID,
			Name:         name,
			OriginalName: tenantstore.OriginalName(name),
			Path:         s.bucket + "/" + obj.Key,
			Size:         obj.Size,
			StoredAt:     obj.LastModified,
		})
	}

	return docs, nil
}

func (s *Store) Read(ctx context.Context, tenantID int64, name string) ([]byte, error) {
	if !tenantstore.ValidName(name) {
		return nil, fmt.Errorf("%w: %q", tenantstore.ErrInvalidName, name)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectKey(tenantID, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %w", err)
	}

	return data, nil
}

func (s *Store) Delete(ctx context.Context, tenantID int64, name string) (bool, error) {
	if !tenantstore.ValidName(name) {
		return false, fmt.Errorf("%w: %q", tenantstore.ErrInvalidName, name)
	}
	key := s.objectKey(tenantID, name)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object: %w", err)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("failed to delete object: %w", err)
	}

	log.Info("deleted tenant document", "tenant", tenantID, "name", name)
	return true, nil
}

func (s *Store) Wipe(ctx context.Context, tenantID int64) error {
	prefix := s.tenantPrefix(tenantID)

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete object %s: %w", obj.Key, err)
		}
	}

	log.Info("wiped tenant documents", "tenant", tenantID)
	return nil
}

func (s *Store) Tenants(ctx context.Context) ([]int64, error) {
	seen := map[int64]bool{}
	tenants := []int64{}

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: false}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list tenant prefixes: %w", obj.Err)
		}
		var id int64
		if _, err := fmt.Sscanf(obj.Key, "user_%d/", &id); err != nil {
			continue
		}
		if !seen[id] {
			seen[id] = true
			tenants = append(tenants, id)
		}
	}

	return tenants, nil
}

func (s *Store) tenantPrefix(tenantID int64) string {
	return fmt.Sprintf("user_%d/", tenantID)
}

func (s *Store) objectKey(tenantID int64, name string) string {
	return s.tenantPrefix(tenantID) + name
}

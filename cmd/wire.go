package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"corpora/src/core/knowledgebase"
	"corpora/src/embedding"
	"corpora/src/fsutil"
	"corpora/src/infrastructure/integrations/ollama"
	"corpora/src/infrastructure/integrations/unstructured"
	"corpora/src/storage/minioctrl"
	"corpora/src/storage/tenantstore"
	"corpora/src/textextract"
	"corpora/src/vectorindex"
)

// buildDocumentStore selects the configured document backend.
func buildDocumentStore(fs fsutil.FileStore) (tenantstore.DocumentStore, error) {
	if viper.GetString("storage.backend") == "minio" {
		store, err := minioctrl.NewStore(
			viper.GetString("minio.endpoint"),
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			viper.GetString("minio.documents_bucket"),
			false,
		)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucketExists(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to ensure documents bucket: %w", err)
		}
		return store, nil
	}
	return tenantstore.NewLocalStore(fs, viper.GetString("storage.documents_dir")), nil
}

// buildKnowledgeBase wires the extraction, embedding and indexing stack
// behind the knowledge base façade.
func buildKnowledgeBase() (*knowledgebase.Service, tenantstore.DocumentStore, error) {
	fs := fsutil.NewLocalFileStore()

	docs, err := buildDocumentStore(fs)
	if err != nil {
		return nil, nil, err
	}

	var partitioner textextract.Partitioner
	if url := viper.GetString("unstructured.url"); url != "" {
		partitioner = unstructured.NewService(url, &http.Client{Timeout: 120 * time.Second})
	}
	extractor := textextract.NewExtractor(partitioner)

	ollamaClient := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 30 * time.Second,
	})
	var embedder embedding.Embedder = embedding.NewOllamaEmbedder(
		ollamaClient,
		viper.GetString("embedding.model"),
		viper.GetInt("embedding.dimension"),
	)
	embedder = embedding.NewChunkingEmbedder(embedder, viper.GetInt("embedding.max_chars"))

	manager := vectorindex.NewManager(docs, extractor, embedder, fs, viper.GetString("storage.indexes_dir"))

	return knowledgebase.NewService(docs, embedder, manager), docs, nil
}

package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for document storage
	viper.BindEnv("storage.backend", "STORAGE_BACKEND")
	viper.BindEnv("storage.documents_dir", "STORAGE_DOCUMENTS_DIR")
	viper.BindEnv("storage.indexes_dir", "STORAGE_INDEXES_DIR")

	// Map environment variables to Viper keys for MinIO
	viper.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("minio.documents_bucket", "MINIO_DOCUMENTS_BUCKET")

	// Map environment variables to Viper keys for embeddings and extraction
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("embedding.model", "EMBEDDING_MODEL")
	viper.BindEnv("embedding.dimension", "EMBEDDING_DIMENSION")
	viper.BindEnv("embedding.max_chars", "EMBEDDING_MAX_CHARS")
	viper.BindEnv("unstructured.url", "UNSTRUCTURED_API_URL")

	// Map environment variables to Viper keys for the default LLM
	viper.BindEnv("llm.default_provider", "LLM_DEFAULT_PROVIDER")
	viper.BindEnv("llm.default_model", "LLM_DEFAULT_MODEL")
	viper.BindEnv("llm.default_base_url", "LLM_DEFAULT_BASE_URL")
	viper.BindEnv("llm.default_api_key", "DEEPSEEK_API_KEY")

	// Map environment variables to Viper keys for PostgreSQL
	viper.BindEnv("postgres.enabled", "POSTGRES_ENABLED")
	viper.BindEnv("postgres.host", "POSTGRES_HOST")
	viper.BindEnv("postgres.port", "POSTGRES_PORT")
	viper.BindEnv("postgres.user", "POSTGRES_USER")
	viper.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	viper.BindEnv("postgres.db", "POSTGRES_DB")

	// Map environment variables to Viper keys for the server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Map environment variables to Viper keys for logging
	viper.BindEnv("log.mode", "LOG_MODE")

	// Set default values for document storage
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.documents_dir", "user_documents")
	viper.SetDefault("storage.indexes_dir", "user_indexes")

	// Set default values for MinIO
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.access_key", "minioadmin")
	viper.SetDefault("minio.secret_key", "minioadmin")
	viper.SetDefault("minio.documents_bucket", "tenant-documents")

	// Set default values for embeddings and extraction
	viper.SetDefault("ollama.url", "http://localhost:11434/api")
	viper.SetDefault("embedding.model", "nomic-embed-text")
	viper.SetDefault("embedding.dimension", 768)
	viper.SetDefault("embedding.max_chars", 8000)
	viper.SetDefault("unstructured.url", "")

	// Set default values for the default LLM
	viper.SetDefault("llm.default_provider", "deepseek")
	viper.SetDefault("llm.default_model", "deepseek-chat")
	viper.SetDefault("llm.default_base_url", "https://api.deepseek.com")

	// Set default values for PostgreSQL
	viper.SetDefault("postgres.enabled", false)
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", "5432")
	viper.SetDefault("postgres.user", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.db", "corpora")

	// Set default values for the server
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", "5s")

	// Set default values for logging
	viper.SetDefault("log.mode", "development")
}

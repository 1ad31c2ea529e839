package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	httpHdlr "corpora/handler/http"
	"corpora/src/core/generation"
	"corpora/src/llm"
	"corpora/src/log"
	"corpora/src/storage/postgres/preferencectrl"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the knowledge base server",
	Long:  `The serve command starts an HTTP server exposing per-tenant document, search and chat APIs.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	kbService, _, err := buildKnowledgeBase()
	if err != nil {
		log.Error(err, "failed to initialize knowledge base")
		return
	}

	// Preference store is optional: without it every tenant gets the
	// default provider and preferences cannot be set.
	var prefs generation.PreferenceStore
	var prefWriter httpHdlr.PreferenceWriter
	if viper.GetBool("postgres.enabled") {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			viper.GetString("postgres.host"),
			viper.GetString("postgres.user"),
			viper.GetString("postgres.password"),
			viper.GetString("postgres.db"),
			viper.GetString("postgres.port"))
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Error(err, "failed to connect to database")
			return
		}
		repo := preferencectrl.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			log.Error(err, "failed to migrate preference table")
			return
		}
		prefs = repo
		prefWriter = repo
	}

	defaults := llm.ModelConfig{
		Provider:   llm.ParseProvider(viper.GetString("llm.default_provider")),
		ModelID:    viper.GetString("llm.default_model"),
		APIBaseURL: viper.GetString("llm.default_base_url"),
		APIKey:     viper.GetString("llm.default_api_key"),
	}
	genService := generation.NewService(prefs, defaults)

	// Setup gin router
	r := gin.Default()
	handler := httpHdlr.NewHandler(kbService, genService, prefWriter)
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "server forced to shutdown")
	}

	log.Info("server exited")
}

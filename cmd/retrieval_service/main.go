package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ComplyCheck/internal/api"
	"ComplyCheck/internal/config"
	milvusdb "ComplyCheck/internal/database/milvus"
	redisdb "ComplyCheck/internal/database/redis"
	"ComplyCheck/internal/embedding"
	"ComplyCheck/internal/retrieval/cache"
	"ComplyCheck/internal/retrieval/index"
	"ComplyCheck/internal/retrieval/loaders"
	"ComplyCheck/internal/retrieval/retriever"
	"ComplyCheck/pkg/logger"
)

func main() {
	// 1. Load configuration
	configPath := "config/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logger
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("RetrievalService", "", "")
	appLogger.Info("Starting retrieval service...")

	ctx := context.Background()

	// 3. Probe the primary backend. Any initialization failure switches
	// the retriever to the in-memory fallback instead of aborting.
	var embedder embedding.Embedding
	var primary index.Index
	var milvusIdx *index.MilvusIndex

	embedder, err = newEmbedder(&cfg.Embedding)
	if err != nil {
		appLogger.Warn(fmt.Sprintf("Embedding provider unavailable, using fallback index: %v", err))
		embedder = nil
	}

	if embedder != nil {
		mc, err := milvusdb.GetClient(ctx, &cfg.Milvus)
		if err != nil {
			appLogger.Warn(fmt.Sprintf("Milvus unavailable, using fallback index: %v", err))
			embedder = nil
		} else {
			defer mc.Close()

			// The instance id makes the ephemeral collection private to
			// this service instance.
			instanceID := uuid.New().String()[:8]
			milvusIdx, err = index.NewMilvusIndex(ctx, mc, instanceID, appLogger)
			if err != nil {
				appLogger.Warn(fmt.Sprintf("Milvus collection setup failed, using fallback index: %v", err))
				embedder = nil
			} else {
				primary = milvusIdx
			}
		}
	}

	retr, err := retriever.New(cfg.Retrieval, loaders.NewPDFLoader(), embedder, primary, appLogger)
	if err != nil {
		log.Fatalf("Failed to create retriever: %v", err)
	}

	// 4. Optional redis result cache
	var resultCache *cache.ResultCache
	if cfg.Redis.Enabled {
		rdb, err := redisdb.GetClient(&cfg.Redis)
		if err != nil {
			appLogger.Warn(fmt.Sprintf("Redis unavailable, result cache disabled: %v", err))
		} else {
			defer redisdb.Close()
			resultCache = cache.New(rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second, appLogger)
			appLogger.Info("Result cache enabled")
		}
	}

	// 5. HTTP server
	handler := api.NewHandler(retr, resultCache, cfg.Retrieval.DefaultTopK, appLogger)
	router := api.SetupRouter(handler)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening on %s", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 6. Graceful shutdown: drop the ephemeral collection before exit.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("HTTP shutdown failed: %v", err))
	}
	if milvusIdx != nil {
		if err := milvusIdx.Close(shutdownCtx); err != nil {
			appLogger.Error(fmt.Sprintf("Index teardown failed: %v", err))
		}
	}
	appLogger.Info("Retrieval service stopped")
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(cfg *config.EmbeddingConfig) (embedding.Embedding, error) {
	switch embedding.ModelType(cfg.Provider) {
	case embedding.Ollama:
		return embedding.NewOllamaModel(cfg.Model, cfg.BaseURL)
	case embedding.Google:
		return embedding.NewGoogleModel(cfg.APIKey, cfg.Model)
	case embedding.OpenAI:
		return embedding.NewOpenAIModel(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

// Package main provides the MCP server entry point for role-scoped document
// retrieval.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/brightfin/rbac-rag/internal/config"
	"github.com/brightfin/rbac-rag/internal/embedding"
	"github.com/brightfin/rbac-rag/internal/engine"
	"github.com/brightfin/rbac-rag/internal/llm"
	mcpserver "github.com/brightfin/rbac-rag/internal/mcp"
	"github.com/brightfin/rbac-rag/internal/retrieval"
	"github.com/brightfin/rbac-rag/internal/storage"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// MCP speaks JSON-RPC over stdout, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := storage.NewStorage(storage.Config{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		Collection: cfg.Qdrant.Collection,
		Dimension:  embedding.Dimension,
	})
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("failed to ensure collection: %v", err)
	}

	client, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create embedding client: %v", err)
	}
	embedder := embedding.NewEmbedder(client, cfg.Embedder.BatchSize)

	retriever := retrieval.NewRetriever(store, embedder, logger)
	generator := llm.NewGenerator(client.Client(), cfg.Generator.Model, cfg.Generator.Temperature)
	eng := engine.NewEngine(retriever, generator, engine.Options{
		TopK:      cfg.Retrieval.TopK,
		MinScore:  cfg.Retrieval.MinScore,
		MaxChunks: cfg.Retrieval.MaxChunks,
	}, logger)

	server := mcpserver.NewServer(&mcpserver.Config{
		Engine:     eng,
		Retriever:  retriever,
		Storage:    store,
		Collection: cfg.Qdrant.Collection,
	})

	log.Println("Starting RBAC document MCP server (stdio mode)...")
	if err := server.Run(ctx); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}

// Package main provides the ragctl CLI for managing the role-scoped document
// index and querying it from the terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/brightfin/rbac-rag/internal/config"
	"github.com/brightfin/rbac-rag/internal/embedding"
	"github.com/brightfin/rbac-rag/internal/engine"
	"github.com/brightfin/rbac-rag/internal/indexer"
	"github.com/brightfin/rbac-rag/internal/llm"
	"github.com/brightfin/rbac-rag/internal/rbac"
	"github.com/brightfin/rbac-rag/internal/retrieval"
	"github.com/brightfin/rbac-rag/internal/storage"
)

var (
	configPath string

	askRole string
	askJSON bool
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Role-scoped document index management tool",
	Long:  "CLI tool for indexing role-partitioned company documents into Qdrant and querying them with role-aware retrieval",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Index all documents from the corpus directory",
	Long: `Walks the role-partitioned corpus directory and indexes every supported
file (.md, .csv) into Qdrant, tagging each chunk with its partition's role.

Environment variables:
  QDRANT_HOST     Qdrant hostname (default: localhost)
  QDRANT_PORT     Qdrant gRPC port (default: 6334)
  COLLECTION_NAME Collection name (default: rag_rbac_docs)
  OPENAI_API_KEY  OpenAI API key for embeddings (required)`,
	RunE: runSync,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the collection and payload indexes if missing",
	RunE:  runInit,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the collection and all indexed points",
	RunE:  runClear,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection info and sampled content distributions",
	RunE:  runStats,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the indexed corpus",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	askCmd.Flags().StringVarP(&askRole, "role", "r", rbac.RoleGeneral, "requester role")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full structured answer as JSON")
	rootCmd.AddCommand(syncCmd, initCmd, clearCmd, statsCmd, askCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("Starting sync...")
	fmt.Println()

	store, client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	embedder := embedding.NewEmbedder(client, cfg.Embedder.BatchSize)

	fmt.Printf("Indexing documents from %s...\n", cfg.Indexing.DataDir)
	pipeline := indexer.NewPipeline(store, embedder, indexer.Config{
		MaxChunkWords: cfg.Indexing.MaxChunkWords,
		OverlapWords:  cfg.Indexing.OverlapWords,
		BatchSize:     cfg.Indexing.BatchSize,
	}, slog.Default())

	result, err := pipeline.IndexAll(ctx, cfg.Indexing.DataDir)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Sync complete!")
	fmt.Printf("  Files:    %d/%d\n", result.IndexedFiles, result.TotalFiles)
	fmt.Printf("  Chunks:   %d\n", result.TotalChunks)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Second))

	if len(result.FailedFiles) > 0 {
		fmt.Println()
		fmt.Println("Failed files:")
		for _, failed := range result.FailedFiles {
			fmt.Printf("  - %s: %s\n", failed.Path, failed.Reason)
		}
	}

	fmt.Println()
	fmt.Printf("Total time: %s\n", time.Since(start).Round(time.Second))
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := newStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	fmt.Printf("Collection %q ready\n", cfg.Qdrant.Collection)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := newStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.DeleteCollection(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	if deleted {
		fmt.Printf("Collection %q deleted\n", cfg.Qdrant.Collection)
	} else {
		fmt.Printf("Collection %q does not exist, nothing to do\n", cfg.Qdrant.Collection)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := newStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	info, err := store.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to sample collection: %w", err)
	}

	fmt.Printf("Collection: %s\n", cfg.Qdrant.Collection)
	fmt.Printf("  Points:      %d\n", info.PointsCount)
	fmt.Printf("  Vector size: %d\n", info.VectorSize)
	fmt.Printf("  Distance:    %s\n", info.Distance)
	fmt.Println()
	fmt.Printf("Sampled from %d points:\n", stats.SampleSize)
	fmt.Printf("  Avg words/chunk: %.1f\n", stats.AvgWordsPerChunk)
	fmt.Println("  Roles:")
	for role, count := range stats.RoleDistribution {
		fmt.Printf("    %-12s %d\n", role, count)
	}
	fmt.Println("  File types:")
	for ft, count := range stats.FileTypeDistribution {
		fmt.Printf("    %-12s %d\n", ft, count)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder := embedding.NewEmbedder(client, cfg.Embedder.BatchSize)
	generator := llm.NewGenerator(client.Client(), cfg.Generator.Model, cfg.Generator.Temperature)
	retriever := retrieval.NewRetriever(store, embedder, slog.Default())
	eng := engine.NewEngine(retriever, generator, engine.Options{
		TopK:      cfg.Retrieval.TopK,
		MinScore:  cfg.Retrieval.MinScore,
		MaxChunks: cfg.Retrieval.MaxChunks,
	}, slog.Default())

	ans := eng.Ask(ctx, args[0], askRole)

	if askJSON {
		out, err := json.MarshalIndent(ans, "", "  ")
		if err != nil {
			return fmt.Errorf("encode answer: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(ans.Response)
	if len(ans.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range ans.Sources {
			fmt.Printf("  - %s (%s, %s, score %.3f)\n", src.Title, src.Source, src.Role, src.Score)
		}
	}
	return nil
}

// connect opens storage and the shared OpenAI client, the common prefix of
// every command that touches both Qdrant and OpenAI.
func connect(ctx context.Context, cfg *config.AppConfig) (*storage.Storage, *embedding.Client, error) {
	store, err := newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := store.Health(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("qdrant health check failed: %w", err)
	}

	client, err := embedding.NewClient()
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return store, client, nil
}

func newStorage(cfg *config.AppConfig) (*storage.Storage, error) {
	store, err := storage.NewStorage(storage.Config{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		Collection: cfg.Qdrant.Collection,
		Dimension:  embedding.Dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}
	return store, nil
}

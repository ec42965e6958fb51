// Package indexer walks a role-partitioned document tree, segments each
// file, embeds the surviving chunks and upserts them into the vector index
// in bounded batches.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brightfin/rbac-rag/internal/segment"
	"github.com/brightfin/rbac-rag/internal/storage"
)

// DefaultBatchSize caps the pending upsert buffer independent of corpus
// size.
const DefaultBatchSize = 100

// Embedder generates embeddings for chunk contents.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// PointStore receives finished batches of indexed points.
type PointStore interface {
	Upsert(ctx context.Context, points []*storage.Point) error
}

// IndexResult reports what an indexing run accomplished.
type IndexResult struct {
	TotalFiles   int
	IndexedFiles int
	TotalChunks  int
	FailedFiles  []FailedFile
	Duration     time.Duration
}

// FailedFile records a file that was skipped and why.
type FailedFile struct {
	Path   string
	Reason string
}

// Pipeline orchestrates segmentation, embedding and batched upserts.
type Pipeline struct {
	store     PointStore
	embedder  Embedder
	segmenter *segment.MarkdownSegmenter
	logger    *slog.Logger

	maxChunkWords int
	overlapWords  int
	batchSize     int

	pending []*storage.Point
}

// Config tunes the pipeline; zero values select the package defaults.
type Config struct {
	MaxChunkWords int
	OverlapWords  int
	BatchSize     int
}

// NewPipeline creates an indexing pipeline. A nil logger falls back to
// slog.Default.
func NewPipeline(store PointStore, embedder Embedder, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxChunkWords <= 0 {
		cfg.MaxChunkWords = segment.DefaultMaxChunkWords
	}
	if cfg.OverlapWords <= 0 {
		cfg.OverlapWords = segment.DefaultOverlapWords
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Pipeline{
		store:         store,
		embedder:      embedder,
		segmenter:     segment.NewMarkdownSegmenter(),
		logger:        logger,
		maxChunkWords: cfg.MaxChunkWords,
		overlapWords:  cfg.OverlapWords,
		batchSize:     cfg.BatchSize,
	}
}

// IndexAll walks root's role subdirectories and indexes every supported
// file, tagging each chunk with its partition's role. A failure in one file
// is logged and skipped, never aborting the rest of the corpus. Entries at
// the root that are not directories are ignored with a warning. Returns the
// totals for operator reporting; TotalChunks counts chunks actually
// upserted.
func (p *Pipeline) IndexAll(ctx context.Context, root string) (*IndexResult, error) {
	start := time.Now()
	result := &IndexResult{}
	p.pending = p.pending[:0]

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			p.logger.Warn("ignoring non-directory corpus entry", "name", entry.Name())
			continue
		}
		role := entry.Name()
		roleDir := filepath.Join(root, role)
		p.logger.Info("processing role partition", "role", role)

		files, err := os.ReadDir(roleDir)
		if err != nil {
			p.logger.Warn("failed to read role partition", "role", role, "error", err)
			continue
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}
			path := filepath.Join(roleDir, file.Name())
			result.TotalFiles++

			indexed, err := p.processFile(ctx, path, role, result)
			if err != nil {
				p.logger.Warn("failed to process file", "path", path, "error", err)
				result.FailedFiles = append(result.FailedFiles, FailedFile{
					Path:   path,
					Reason: err.Error(),
				})
				continue
			}
			if indexed {
				result.IndexedFiles++
			}
		}
	}

	// Flush the remainder below the batch threshold.
	if err := p.flush(ctx, result); err != nil {
		p.logger.Error("final batch flush failed", "error", err)
		result.FailedFiles = append(result.FailedFiles, FailedFile{
			Path:   root,
			Reason: fmt.Sprintf("final flush: %v", err),
		})
	}

	result.Duration = time.Since(start)
	p.logger.Info("indexing complete",
		"files", result.IndexedFiles,
		"failed", len(result.FailedFiles),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)
	return result, nil
}

// processFile segments, embeds and enqueues one file's chunks. Returns false
// without error for unsupported extensions, which are skipped rather than
// treated as failures.
func (p *Pipeline) processFile(ctx context.Context, path, role string, result *IndexResult) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var chunks []segment.Chunk
	switch ext {
	case ".md":
		source, err := os.ReadFile(path)
		if err != nil {
			return false, fmt.Errorf("read: %w", err)
		}
		chunks, err = p.segmenter.Segment(source, p.maxChunkWords, p.overlapWords)
		if err != nil {
			return false, fmt.Errorf("segment: %w", err)
		}
	case ".csv":
		source, err := os.ReadFile(path)
		if err != nil {
			return false, fmt.Errorf("read: %w", err)
		}
		chunks, err = segment.SegmentCSV(source)
		if err != nil {
			return false, fmt.Errorf("segment: %w", err)
		}
	default:
		p.logger.Warn("unsupported file type, skipping", "path", path)
		return false, nil
	}

	if len(chunks) == 0 {
		p.logger.Info("no chunks survived segmentation", "path", path)
		return true, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("embeddings: %w", err)
	}

	source := filepath.Base(path)
	for i, chunk := range chunks {
		p.pending = append(p.pending, &storage.Point{
			ID:        uuid.New().String(),
			Embedding: embeddings[i],
			Payload: storage.ChunkPayload{
				Role:         role,
				Source:       source,
				SectionTitle: chunk.SectionTitle,
				HeadingLevel: chunk.HeadingLevel,
				Content:      chunk.Content,
				ChunkIndex:   chunk.ChunkIndex,
				TotalChunks:  chunk.TotalChunks,
				FileType:     ext,
				WordCount:    chunk.WordCount,
				RowData:      chunk.RowData,
			},
		})
		if len(p.pending) >= p.batchSize {
			if err := p.flush(ctx, result); err != nil {
				return false, fmt.Errorf("upsert batch: %w", err)
			}
		}
	}

	p.logger.Debug("indexed file", "path", path, "chunks", len(chunks))
	return true, nil
}

// flush upserts the pending buffer. The buffer is cleared even on failure so
// one bad batch cannot poison every subsequent file.
func (p *Pipeline) flush(ctx context.Context, result *IndexResult) error {
	if len(p.pending) == 0 {
		return nil
	}
	batch := p.pending
	p.pending = nil

	if err := p.store.Upsert(ctx, batch); err != nil {
		return err
	}
	result.TotalChunks += len(batch)
	p.logger.Debug("flushed batch", "points", len(batch))
	return nil
}

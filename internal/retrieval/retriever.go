// Package retrieval performs role-scoped similarity search over the vector
// index. This layer never fails hard: any embedding or index error degrades
// to an empty result set.
package retrieval

import (
	"context"
	"log/slog"
	"math"

	"github.com/qdrant/go-client/qdrant"

	"github.com/brightfin/rbac-rag/internal/rbac"
	"github.com/brightfin/rbac-rag/internal/storage"
)

// Search defaults applied when the caller passes non-positive values.
const (
	DefaultTopK     = 5
	DefaultMinScore = 0.3
)

// Index is the slice of the vector store the retriever needs.
type Index interface {
	Query(ctx context.Context, vector []float32, limit int, filter *qdrant.Filter, scoreThreshold float32) ([]storage.SearchResult, error)
}

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever executes role-filtered searches and curates results by score.
type Retriever struct {
	index    Index
	embedder QueryEmbedder
	logger   *slog.Logger
}

// NewRetriever creates a retriever. A nil logger falls back to slog.Default.
func NewRetriever(index Index, embedder QueryEmbedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{index: index, embedder: embedder, logger: logger}
}

// Search embeds the query, applies the role's visibility filter and returns
// up to k results with score >= minScore, in descending score order. The
// index is asked for 2k candidates so score filtering still leaves enough,
// and the threshold is re-checked locally because the index treats it as a
// hint. Errors are logged and surface as an empty result set.
func (r *Retriever) Search(ctx context.Context, query, role string, k int, minScore float64) []storage.SearchResult {
	if k <= 0 {
		k = DefaultTopK
	}
	if minScore <= 0 {
		minScore = DefaultMinScore
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed", "role", role, "error", err)
		return nil
	}

	results, err := r.index.Query(ctx, vector, 2*k, rbac.Filter(role), float32(minScore))
	if err != nil {
		r.logger.Warn("vector search failed", "role", role, "error", err)
		return nil
	}

	curated := make([]storage.SearchResult, 0, k)
	for _, result := range results {
		if result.Score < minScore {
			continue
		}
		result.Score = round3(result.Score)
		curated = append(curated, result)
		if len(curated) == k {
			break
		}
	}
	return curated
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Package engine orchestrates the query path: retrieve, select, prompt,
// generate, aggregate. Per-request and stateless; a single Engine serves
// concurrent callers.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brightfin/rbac-rag/internal/answer"
	"github.com/brightfin/rbac-rag/internal/prompt"
	"github.com/brightfin/rbac-rag/internal/storage"
)

// Searcher is the retrieval dependency. Implementations degrade errors to an
// empty result set.
type Searcher interface {
	Search(ctx context.Context, query, role string, k int, minScore float64) []storage.SearchResult
}

// Generator turns a prompt into a completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tune the per-query retrieval and selection behavior. Zero values
// select the package defaults.
type Options struct {
	TopK      int
	MinScore  float64
	MaxChunks int
}

// Engine answers role-scoped questions over the indexed corpus.
type Engine struct {
	retriever Searcher
	generator Generator
	opts      Options
	logger    *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(retriever Searcher, generator Generator, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		retriever: retriever,
		generator: generator,
		opts:      opts,
		logger:    logger,
	}
}

// Ask answers a question for the given requester role. With no visible
// evidence it returns the fixed insufficient-information answer without
// invoking the generator; a generation failure degrades to an apologetic
// response with the citations intact. Ask never returns an error.
func (e *Engine) Ask(ctx context.Context, query, role string) *answer.GeneratedAnswer {
	results := e.retriever.Search(ctx, query, role, e.opts.TopK, e.opts.MinScore)
	docs := prompt.Select(results, e.opts.MaxChunks)
	if len(docs) == 0 {
		e.logger.Info("no relevant documents", "role", role)
		return answer.Insufficient(query, role)
	}

	text, err := e.generator.Generate(ctx, prompt.Build(query, docs, role))
	if err != nil {
		e.logger.Warn("generation failed", "role", role, "error", err)
		text = fmt.Sprintf("I encountered an error while generating a response: %v. Please try again.", err)
	}

	return answer.Aggregate(query, docs, text, role)
}

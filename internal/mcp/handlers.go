package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/brightfin/rbac-rag/internal/answer"
	"github.com/brightfin/rbac-rag/internal/storage"
)

// questionAnswerer is the slice of the engine the ask_question tool needs.
type questionAnswerer interface {
	Ask(ctx context.Context, query, role string) *answer.GeneratedAnswer
}

// docSearcher is the slice of the retriever the search_docs tool needs.
type docSearcher interface {
	Search(ctx context.Context, query, role string, k int, minScore float64) []storage.SearchResult
}

// makeAskHandler creates the ask_question tool handler. The engine never
// fails: missing evidence and generation errors both come back as degraded
// answers, so the tool only errors on a missing query.
func makeAskHandler(eng questionAnswerer) func(
	context.Context, *mcp.CallToolRequest, AskQuestionInput,
) (*mcp.CallToolResult, AskQuestionOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskQuestionInput) (
		*mcp.CallToolResult, AskQuestionOutput, error,
	) {
		if input.Query == "" {
			return nil, AskQuestionOutput{}, fmt.Errorf("query is required")
		}

		ans := eng.Ask(ctx, input.Query, input.Role)
		return nil, AskQuestionOutput{
			Response: ans.Response,
			Sources:  ans.Sources,
			Metadata: ans.Metadata,
		}, nil
	}
}

// makeSearchHandler creates the search_docs tool handler. Results are
// already role-filtered and threshold-checked by the retriever.
func makeSearchHandler(retriever docSearcher) func(
	context.Context, *mcp.CallToolRequest, SearchDocsInput,
) (*mcp.CallToolResult, SearchDocsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchDocsInput) (
		*mcp.CallToolResult, SearchDocsOutput, error,
	) {
		if input.Query == "" {
			return nil, SearchDocsOutput{}, fmt.Errorf("query is required")
		}

		hits := retriever.Search(ctx, input.Query, input.Role, input.MaxResults, input.MinScore)

		results := make([]SearchResult, 0, len(hits))
		for _, hit := range hits {
			results = append(results, SearchResult{
				Title:    hit.SectionTitle,
				Source:   hit.Source,
				Role:     hit.Role,
				Score:    hit.Score,
				FileType: hit.FileType,
				Content:  hit.Content,
			})
		}

		if len(results) == 0 {
			return nil, SearchDocsOutput{
				Results: []SearchResult{},
				Message: "No matching documents found. Try broader search terms.",
			}, nil
		}

		return nil, SearchDocsOutput{Results: results}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler. Distributions
// are sampled, not exact counts.
func makeStatusHandler(store *storage.Storage, collection string) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		info, err := store.Info(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("qdrant_error: failed to get collection info: %w", err)
		}

		stats, err := store.Stats(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("qdrant_error: failed to sample collection: %w", err)
		}

		return nil, StatusOutput{
			Collection:           collection,
			TotalPoints:          info.PointsCount,
			VectorSize:           info.VectorSize,
			Distance:             info.Distance,
			RoleDistribution:     stats.RoleDistribution,
			FileTypeDistribution: stats.FileTypeDistribution,
			AvgWordsPerChunk:     stats.AvgWordsPerChunk,
			SampleSize:           stats.SampleSize,
		}, nil
	}
}

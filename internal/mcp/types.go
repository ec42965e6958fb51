// Package mcp exposes the role-scoped retrieval pipeline as MCP tools over
// stdio.
package mcp

import "github.com/brightfin/rbac-rag/internal/answer"

// AskQuestionInput defines the input parameters for the ask_question tool.
type AskQuestionInput struct {
	// Query is the natural-language question to answer.
	Query string `json:"query" jsonschema:"required,description=The question to answer from the indexed documents"`
	// Role is the requester's role; it bounds which documents are visible.
	Role string `json:"role" jsonschema:"required,description=Requester role (engineering, marketing, finance, hr, c-level, general)"`
}

// AskQuestionOutput carries the generated answer with its citations.
type AskQuestionOutput struct {
	// Response is the generated answer text.
	Response string `json:"response"`
	// Sources lists the documents the answer was grounded on.
	Sources []answer.Source `json:"sources"`
	// Metadata aggregates facts about the evidence used.
	Metadata answer.Metadata `json:"metadata"`
}

// SearchDocsInput defines the input parameters for the search_docs tool.
type SearchDocsInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query"`
	// Role is the requester's role; it bounds which documents are visible.
	Role string `json:"role" jsonschema:"required,description=Requester role (engineering, marketing, finance, hr, c-level, general)"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of results to return"`
	// MinScore is the minimum relevance threshold (0-1).
	MinScore float64 `json:"min_score,omitempty" jsonschema:"minimum=0,maximum=1,default=0.3,description=Minimum relevance score threshold (0-1)"`
}

// SearchDocsOutput contains the search results.
type SearchDocsOutput struct {
	// Results is the list of matching chunks.
	Results []SearchResult `json:"results"`
	// Message provides informational context (e.g., "No matching documents found").
	Message string `json:"message,omitempty"`
}

// SearchResult represents a single chunk match from semantic search.
type SearchResult struct {
	// Title is the chunk's section or row title.
	Title string `json:"title"`
	// Source is the file the chunk was cut from.
	Source string `json:"source"`
	// Role is the partition the chunk belongs to.
	Role string `json:"role"`
	// Score is the similarity score (0-1), rounded to three decimals.
	Score float64 `json:"score"`
	// FileType is the source file extension.
	FileType string `json:"file_type"`
	// Content is the chunk text.
	Content string `json:"content"`
}

// StatusInput defines the input parameters for the get_index_status tool.
// This tool takes no parameters.
type StatusInput struct {
	// No input parameters required
}

// StatusOutput contains the current index status.
type StatusOutput struct {
	// Collection is the index collection name.
	Collection string `json:"collection"`
	// TotalPoints is the number of indexed chunks.
	TotalPoints uint64 `json:"total_points"`
	// VectorSize is the embedding dimension of the collection.
	VectorSize uint64 `json:"vector_size"`
	// Distance is the similarity metric in use.
	Distance string `json:"distance"`
	// RoleDistribution estimates how indexed chunks spread across roles.
	RoleDistribution map[string]int `json:"role_distribution"`
	// FileTypeDistribution estimates how indexed chunks spread across file types.
	FileTypeDistribution map[string]int `json:"file_type_distribution"`
	// AvgWordsPerChunk is the mean chunk length in the sampled points.
	AvgWordsPerChunk float64 `json:"avg_words_per_chunk"`
	// SampleSize is how many points the distributions were estimated from.
	SampleSize int `json:"sample_size"`
}

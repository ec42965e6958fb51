// Package answer combines generated text with source provenance and
// per-answer metadata into the structured response returned to callers.
package answer

import (
	"math"

	"github.com/brightfin/rbac-rag/internal/segment"
	"github.com/brightfin/rbac-rag/internal/storage"
)

// InsufficientInfo is the fixed response when retrieval finds nothing the
// requester is allowed to see. The generator is never invoked in that case.
const InsufficientInfo = "I don't have enough information to answer your question. Please try rephrasing or ask about a different topic."

// Source is one citation carried by a generated answer.
type Source struct {
	Title          string            `json:"title"`
	Source         string            `json:"source"`
	Role           string            `json:"role"`
	Score          float64           `json:"score"`
	FileType       string            `json:"file_type"`
	WordCount      int               `json:"word_count"`
	StructuredData segment.RowFields `json:"structured_data,omitempty"`
}

// Metadata aggregates quantitative facts about the answer's evidence.
type Metadata struct {
	TotalSources          int            `json:"total_sources"`
	TotalWordsReferenced  int            `json:"total_words_referenced"`
	AverageRelevanceScore float64        `json:"average_relevance_score"`
	RoleDistribution      map[string]int `json:"role_distribution"`
	UserRole              string         `json:"user_role"`
	Query                 string         `json:"query"`
}

// GeneratedAnswer is the structured response for one query. Constructed once
// per query and never persisted.
type GeneratedAnswer struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
	Metadata Metadata `json:"metadata"`
}

// Insufficient returns the fixed no-evidence answer with empty citations and
// zero-valued metadata, echoing the query and role.
func Insufficient(query, role string) *GeneratedAnswer {
	return &GeneratedAnswer{
		Response: InsufficientInfo,
		Sources:  []Source{},
		Metadata: Metadata{
			RoleDistribution: map[string]int{},
			UserRole:         role,
			Query:            query,
		},
	}
}

// Aggregate attaches provenance and metadata to a generated response. The
// docs must be exactly the chunks that were included in the prompt, so the
// citation list and totals describe the evidence the generator actually saw.
func Aggregate(query string, docs []storage.SearchResult, response, role string) *GeneratedAnswer {
	sources := make([]Source, 0, len(docs))
	totalWords := 0
	scoreSum := 0.0
	roles := make(map[string]int)

	for _, doc := range docs {
		sources = append(sources, Source{
			Title:          doc.SectionTitle,
			Source:         doc.Source,
			Role:           doc.Role,
			Score:          doc.Score,
			FileType:       doc.FileType,
			WordCount:      doc.WordCount,
			StructuredData: doc.RowData,
		})
		totalWords += doc.WordCount
		scoreSum += doc.Score
		roles[doc.Role]++
	}

	avgScore := 0.0
	if len(docs) > 0 {
		avgScore = math.Round(scoreSum/float64(len(docs))*1000) / 1000
	}

	return &GeneratedAnswer{
		Response: response,
		Sources:  sources,
		Metadata: Metadata{
			TotalSources:          len(docs),
			TotalWordsReferenced:  totalWords,
			AverageRelevanceScore: avgScore,
			RoleDistribution:      roles,
			UserRole:              role,
			Query:                 query,
		},
	}
}

// Package prompt assembles retrieved chunks into a role-tailored generation
// prompt. Everything here is pure string formatting, deterministic for a
// given input.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brightfin/rbac-rag/internal/rbac"
	"github.com/brightfin/rbac-rag/internal/storage"
)

const (
	// DefaultMaxChunks bounds prompt size for prose-only context.
	DefaultMaxChunks = 1
	// StructuredMinChunks is the floor applied when tabular rows are
	// present: a handful of rows is the minimum useful evidence, where a
	// single prose paragraph often suffices.
	StructuredMinChunks = 5
)

// roleGuidance tailors the answer's framing to the requester's role.
// Unmatched roles, "general" included, get the balanced guidance.
var roleGuidance = map[string]string{
	rbac.RoleEngineering: "Focus on technical details, architecture, and implementation specifics. Use technical terminology appropriately.",
	rbac.RoleMarketing:   "Emphasize business impact, customer benefits, and strategic insights. Use marketing-friendly language.",
	rbac.RoleFinance:     "Highlight financial metrics, costs, ROI, and quantitative analysis. Be precise with numbers and percentages.",
	rbac.RoleHR:          "Focus on people-related aspects, employee data, and organizational information. Respect privacy and confidentiality.",
	rbac.RoleCLevel:      "Provide high-level strategic insights and executive summaries. Focus on business impact and key decisions.",
	rbac.RoleGeneral:     "Provide balanced, comprehensive information suitable for a general audience.",
}

// MarkdownFileType marks chunks cut from heading-structured documents.
const MarkdownFileType = ".md"

// Select applies the inclusion policy before formatting: at most maxChunks
// results (default 1), raised to StructuredMinChunks when any result carries
// structured row data. Score order is preserved.
func Select(results []storage.SearchResult, maxChunks int) []storage.SearchResult {
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if hasStructuredData(results) && maxChunks < StructuredMinChunks {
		maxChunks = StructuredMinChunks
	}
	if len(results) > maxChunks {
		results = results[:maxChunks]
	}
	return results
}

// Build renders the full generation prompt: persona, role guidance,
// grounding rules, conditional citation guidance and the formatted context
// blocks.
func Build(query string, docs []storage.SearchResult, role string) string {
	guidance, ok := roleGuidance[role]
	if !ok {
		guidance = roleGuidance[rbac.RoleGeneral]
	}

	var extra []string
	if hasStructuredData(docs) {
		extra = append(extra, "- When referencing CSV data, cite specific field names and values clearly.")
	}
	if hasFileType(docs, MarkdownFileType) {
		extra = append(extra, "- When referencing markdown documents, cite the specific section titles.")
	}
	contentGuidance := ""
	if len(extra) > 0 {
		contentGuidance = "\n" + strings.Join(extra, "\n")
	}

	return fmt.Sprintf(`You are a helpful assistant at a FinTech company, specifically tailored to help %s users.

%s

Answer the following question based on the provided context. Be precise and reference the content, but do not hallucinate facts. If you are unsure, say so.

Guidelines:
- Reference specific sections and sources when possible
- Use the relevance scores to prioritize more relevant information
- Provide clear, actionable insights based on the user's role
- If the context contains structured data (CSV), reference specific fields and values
- Maintain appropriate tone and detail level for the user's role%s

Context:
%s

Question: %s

Answer:`, role, guidance, contentGuidance, formatContext(docs), query)
}

// formatContext renders each chunk as a labeled block with relevance,
// provenance and, when present, its structured row data.
func formatContext(docs []storage.SearchResult) string {
	blocks := make([]string, len(docs))
	for i, doc := range docs {
		var b strings.Builder
		fmt.Fprintf(&b, "[Document %d: %s] (Relevance: %.3f)", i+1, doc.SectionTitle, doc.Score)
		fmt.Fprintf(&b, "\nSource: %s | Role: %s | Type: %s", doc.Source, doc.Role, doc.FileType)
		if doc.TotalChunks != nil {
			fmt.Fprintf(&b, " | Part: %d/%d", doc.ChunkIndex+1, *doc.TotalChunks)
		}
		fmt.Fprintf(&b, " | Words: %d", doc.WordCount)
		if len(doc.RowData) > 0 {
			fmt.Fprintf(&b, "\nStructured Data: %s", indentJSON(doc.RowData))
		}
		fmt.Fprintf(&b, "\n\n%s\n", doc.Content)
		blocks[i] = b.String()
	}
	return "\n" + strings.Repeat("=", 80) + strings.Join(blocks, "\n")
}

func hasStructuredData(docs []storage.SearchResult) bool {
	for _, doc := range docs {
		if len(doc.RowData) > 0 {
			return true
		}
	}
	return false
}

func hasFileType(docs []storage.SearchResult, fileType string) bool {
	for _, doc := range docs {
		if doc.FileType == fileType {
			return true
		}
	}
	return false
}

func indentJSON(v json.Marshaler) string {
	raw, err := v.MarshalJSON()
	if err != nil {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

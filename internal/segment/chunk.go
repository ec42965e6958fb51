// Package segment converts source documents into retrieval-sized chunks with
// section metadata. Markdown documents are split at heading boundaries into
// overlapping word windows; CSV files yield one chunk per row.
package segment

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Minimum sizes below which a chunk is discarded rather than indexed.
const (
	// MinChunkWords is the minimum word count for a text chunk.
	MinChunkWords = 10
	// MinRowWords is the minimum word count for a serialized CSV row.
	MinRowWords = 5
)

// Chunk is a single retrieval unit produced by segmentation.
type Chunk struct {
	// Content is normalized text, never shorter than the kind's minimum.
	Content string
	// SectionTitle is the owning heading text, a key field of a CSV row,
	// or "Document Content" for the paragraph fallback.
	SectionTitle string
	// HeadingLevel is the markdown heading depth (1-6); 1 for CSV rows
	// and fallback chunks.
	HeadingLevel int
	// ChunkIndex is the 0-based position within the section's window list
	// (markdown) or the row's original position (CSV).
	ChunkIndex int
	// TotalChunks is the section's window count or the source's row count.
	// Nil when the total is unknown (paragraph fallback).
	TotalChunks *int
	// RowData carries the cleaned column/value pairs for CSV-derived
	// chunks, in column order. Nil for markdown chunks.
	RowData RowFields
	// WordCount is the whitespace-delimited word count of Content.
	WordCount int
}

// RowField is one cleaned column/value pair from a CSV row.
type RowField struct {
	Column string
	Value  string
}

// RowFields preserves the column order of a CSV row.
type RowFields []RowField

// Get returns the value for a column, if present.
func (rf RowFields) Get(column string) (string, bool) {
	for _, f := range rf {
		if f.Column == column {
			return f.Value, true
		}
	}
	return "", false
}

// MarshalJSON renders the fields as a JSON object in column order. A plain
// map would lose ordering, which downstream citation blocks rely on.
func (rf RowFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range rf {
		if i > 0 {
			buf.WriteByte(',')
		}
		col, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(col)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

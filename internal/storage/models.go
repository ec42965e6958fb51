package storage

import "github.com/brightfin/rbac-rag/internal/segment"

// ChunkPayload is the metadata stored alongside each vector in Qdrant and
// returned verbatim by queries. Field names mirror the payload keys.
type ChunkPayload struct {
	Role         string
	Source       string
	SectionTitle string
	HeadingLevel int
	Content      string
	ChunkIndex   int
	// TotalChunks is nil when the producing segmenter could not know the
	// total (paragraph fallback). Stored as -1 at the payload boundary.
	TotalChunks *int
	FileType    string
	WordCount   int
	RowData     segment.RowFields
}

// Point is a chunk plus its embedding and generated ID. Points are immutable
// once upserted; re-indexing deletes and recreates the collection.
type Point struct {
	ID        string
	Embedding []float32
	Payload   ChunkPayload
}

// SearchResult is a read-only projection of an indexed point's payload plus
// its cosine similarity score in [0,1]. Produced only by queries.
type SearchResult struct {
	ChunkPayload
	Score float64
}

// CollectionInfo holds collection statistics reported by the index.
type CollectionInfo struct {
	PointsCount uint64
	VectorSize  uint64
	Distance    string
}

// CollectionStats summarizes a sample of indexed chunks for operator
// reporting.
type CollectionStats struct {
	RoleDistribution     map[string]int
	FileTypeDistribution map[string]int
	AvgWordsPerChunk     float64
	SampleSize           int
}

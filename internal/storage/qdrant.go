// Package storage wraps the Qdrant vector index: collection lifecycle,
// batched point upserts and filtered similarity queries over role-tagged
// chunk payloads.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"

	"github.com/brightfin/rbac-rag/internal/segment"
)

// Storage wraps the Qdrant client with connection management and health
// checks. Safe for concurrent use by multiple callers.
type Storage struct {
	client     *qdrant.Client
	collection string
	dimension  uint64
}

// Config holds Qdrant connection settings.
type Config struct {
	Host       string
	Port       int
	Collection string
	// Dimension is the embedding model's output size; EnsureCollection
	// creates the collection with this vector size and upserts validate
	// against it.
	Dimension int
}

// NewStorage connects to Qdrant and fails fast, after a bounded retry, if
// the server is unreachable.
func NewStorage(cfg Config) (*Storage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: cfg.Host,
		Port: cfg.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	s := &Storage{
		client:     client,
		collection: cfg.Collection,
		dimension:  uint64(cfg.Dimension),
	}

	if err := s.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}
	return s, nil
}

// healthCheckWithRetry probes Qdrant with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *Storage) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (s *Storage) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the collection with cosine distance and the
// configured vector dimension, plus keyword payload indexes for the
// filterable fields. Idempotent: a no-op when the collection exists.
func (s *Storage) EnsureCollection(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Without keyword indexes, role filtering degrades badly at scale.
	for _, field := range []string{"role", "source", "file_type"} {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}
	return nil
}

// DeleteCollection removes the collection and all its points. Returns false
// with no error when the collection was already absent.
func (s *Storage) DeleteCollection(ctx context.Context) (bool, error) {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return false, fmt.Errorf("failed to delete collection: %w", err)
	}
	return true, nil
}

func (s *Storage) collectionExists(ctx context.Context) (bool, error) {
	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}
	for _, name := range collections {
		if name == s.collection {
			return true, nil
		}
	}
	return false, nil
}

// Upsert stores a batch of points, retrying transient failures with
// exponential backoff. Batch sizing is the caller's concern.
func (s *Storage) Upsert(ctx context.Context, points []*Point) error {
	if len(points) == 0 {
		return nil
	}
	for i, p := range points {
		if uint64(len(p.Embedding)) != s.dimension {
			return fmt.Errorf("%w: point %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(p.Embedding), s.dimension)
		}
	}

	structs := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		structs[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Embedding...),
			Payload: qdrant.NewValueMap(encodePayload(p.Payload)),
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Points:         structs,
		})
		return err
	}, backoff.WithContext(b, ctx))
}

// Query runs a filtered similarity search and returns payload projections
// with scores in descending order. The score threshold is passed to the
// index as a hint; callers re-check it locally.
func (s *Storage) Query(ctx context.Context, vector []float32, limit int, filter *qdrant.Filter, scoreThreshold float32) ([]SearchResult, error) {
	if uint64(len(vector)) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, expected %d",
			ErrDimensionMismatch, len(vector), s.dimension)
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		ScoreThreshold: qdrant.PtrOf(scoreThreshold),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			ChunkPayload: decodePayload(point.Payload),
			Score:        float64(point.Score),
		})
	}
	return results, nil
}

// Info reports collection-level statistics.
func (s *Storage) Info(ctx context.Context) (*CollectionInfo, error) {
	collection, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	info := &CollectionInfo{PointsCount: collection.GetPointsCount()}
	if params := collection.GetConfig().GetParams().GetVectorsConfig().GetParams(); params != nil {
		info.VectorSize = params.GetSize()
		info.Distance = params.GetDistance().String()
	}
	return info, nil
}

// statsSampleSize bounds the scroll used for distribution estimates.
const statsSampleSize = 100

// Stats scrolls a sample of points and summarizes role and file-type
// distributions for operator reporting.
func (s *Storage) Stats(ctx context.Context) (*CollectionStats, error) {
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          qdrant.PtrOf(uint32(statsSampleSize)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll collection: %w", err)
	}

	stats := &CollectionStats{
		RoleDistribution:     make(map[string]int),
		FileTypeDistribution: make(map[string]int),
		SampleSize:           len(points),
	}
	totalWords := 0
	for _, point := range points {
		payload := decodePayload(point.Payload)
		stats.RoleDistribution[payload.Role]++
		stats.FileTypeDistribution[payload.FileType]++
		totalWords += payload.WordCount
	}
	if len(points) > 0 {
		stats.AvgWordsPerChunk = float64(totalWords) / float64(len(points))
	}
	return stats, nil
}

// Close closes the Qdrant client connection.
func (s *Storage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// unknownTotal is the payload sentinel for "total chunk count not known";
// inside the process the absence is modeled as a nil pointer instead.
const unknownTotal = -1

func encodePayload(p ChunkPayload) map[string]any {
	total := unknownTotal
	if p.TotalChunks != nil {
		total = *p.TotalChunks
	}
	payload := map[string]any{
		"role":          p.Role,
		"source":        p.Source,
		"section_title": p.SectionTitle,
		"heading_level": p.HeadingLevel,
		"content":       p.Content,
		"chunk_index":   p.ChunkIndex,
		"total_chunks":  total,
		"file_type":     p.FileType,
		"word_count":    p.WordCount,
	}
	if len(p.RowData) > 0 {
		rows := make([]any, len(p.RowData))
		for i, f := range p.RowData {
			rows[i] = map[string]any{"column": f.Column, "value": f.Value}
		}
		payload["row_data"] = rows
	}
	return payload
}

func decodePayload(payload map[string]*qdrant.Value) ChunkPayload {
	p := ChunkPayload{
		Role:         payload["role"].GetStringValue(),
		Source:       payload["source"].GetStringValue(),
		SectionTitle: payload["section_title"].GetStringValue(),
		HeadingLevel: int(payload["heading_level"].GetIntegerValue()),
		Content:      payload["content"].GetStringValue(),
		ChunkIndex:   int(payload["chunk_index"].GetIntegerValue()),
		FileType:     payload["file_type"].GetStringValue(),
		WordCount:    int(payload["word_count"].GetIntegerValue()),
	}
	if total := int(payload["total_chunks"].GetIntegerValue()); total > unknownTotal {
		p.TotalChunks = &total
	}
	if list := payload["row_data"].GetListValue(); list != nil {
		for _, v := range list.Values {
			fields := v.GetStructValue().GetFields()
			p.RowData = append(p.RowData, segment.RowField{
				Column: fields["column"].GetStringValue(),
				Value:  fields["value"].GetStringValue(),
			})
		}
	}
	return p
}

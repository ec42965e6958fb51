//go:build integration
// +build integration

package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightfin/rbac-rag/internal/rbac"
)

const testDimension = 4

// setupTestStorage creates a test storage instance against a throwaway
// collection. Skips the test if Qdrant is not running.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(Config{
		Host:       "localhost",
		Port:       6334,
		Collection: "rag_rbac_test_" + uuid.New().String()[:8],
		Dimension:  testDimension,
	})
	if err != nil {
		t.Skipf("Qdrant not available: %v", err)
	}

	require.NoError(t, store.EnsureCollection(context.Background()))
	t.Cleanup(func() {
		_, _ = store.DeleteCollection(context.Background())
		store.Close()
	})
	return store
}

func testPoint(role, title string, vector []float32) *Point {
	total := 1
	return &Point{
		ID:        uuid.New().String(),
		Embedding: vector,
		Payload: ChunkPayload{
			Role:         role,
			Source:       "test.md",
			SectionTitle: title,
			HeadingLevel: 1,
			Content:      "content for " + title,
			ChunkIndex:   0,
			TotalChunks:  &total,
			FileType:     ".md",
			WordCount:    3,
		},
	}
}

func TestEnsureCollection_Idempotent(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	// A second call against the existing collection is a no-op.
	require.NoError(t, store.EnsureCollection(ctx))

	info, err := store.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(testDimension), info.VectorSize)
	assert.Equal(t, "Cosine", info.Distance)
}

func TestUpsertQueryRoundTrip(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	points := []*Point{
		testPoint("hr", "HR Doc", []float32{1, 0, 0, 0}),
		testPoint("general", "General Doc", []float32{0.9, 0.1, 0, 0}),
		testPoint("finance", "Finance Doc", []float32{0.8, 0.2, 0, 0}),
	}
	require.NoError(t, store.Upsert(ctx, points))

	// Unfiltered search sees everything.
	results, err := store.Query(ctx, []float32{1, 0, 0, 0}, 10, nil, 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// The hr filter hides the finance document.
	results, err = store.Query(ctx, []float32{1, 0, 0, 0}, 10, rbac.Filter("hr"), 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "finance", r.Role)
	}

	// Scores descend and payloads survive the round trip.
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, "test.md", results[0].Source)
	require.NotNil(t, results[0].TotalChunks)
	assert.Equal(t, 1, *results[0].TotalChunks)
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	store := setupTestStorage(t)

	err := store.Upsert(context.Background(), []*Point{
		testPoint("general", "Bad", []float32{1, 0}),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestQuery_DimensionMismatch(t *testing.T) {
	store := setupTestStorage(t)

	_, err := store.Query(context.Background(), []float32{1, 0}, 5, nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDeleteCollection_Idempotent(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	deleted, err := store.DeleteCollection(ctx)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteCollection(ctx)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStats_Sampling(t *testing.T) {
	store := setupTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []*Point{
		testPoint("hr", "A", []float32{1, 0, 0, 0}),
		testPoint("hr", "B", []float32{0, 1, 0, 0}),
		testPoint("general", "C", []float32{0, 0, 1, 0}),
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.SampleSize)
	assert.Equal(t, 2, stats.RoleDistribution["hr"])
	assert.Equal(t, 1, stats.RoleDistribution["general"])
	assert.Equal(t, 3, stats.FileTypeDistribution[".md"])
	assert.InDelta(t, 3.0, stats.AvgWordsPerChunk, 0.01)
}

package storage

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightfin/rbac-rag/internal/segment"
)

func TestPayload_UnknownTotalSentinel(t *testing.T) {
	// A nil total crosses the payload boundary as -1 and comes back nil.
	p := ChunkPayload{Role: "general", Content: "text", TotalChunks: nil}

	encoded := encodePayload(p)
	assert.Equal(t, unknownTotal, encoded["total_chunks"])

	decoded := decodePayload(qdrant.NewValueMap(encoded))
	assert.Nil(t, decoded.TotalChunks)

	total := 4
	p.TotalChunks = &total
	decoded = decodePayload(qdrant.NewValueMap(encodePayload(p)))
	require.NotNil(t, decoded.TotalChunks)
	assert.Equal(t, 4, *decoded.TotalChunks)
}

func TestPayload_RowDataOrderSurvives(t *testing.T) {
	p := ChunkPayload{
		Role: "hr",
		RowData: segment.RowFields{
			{Column: "name", Value: "Alice"},
			{Column: "team", Value: "Payments"},
			{Column: "office", Value: "NYC"},
		},
	}

	decoded := decodePayload(qdrant.NewValueMap(encodePayload(p)))

	require.Len(t, decoded.RowData, 3)
	assert.Equal(t, "name", decoded.RowData[0].Column)
	assert.Equal(t, "team", decoded.RowData[1].Column)
	assert.Equal(t, "office", decoded.RowData[2].Column)
}

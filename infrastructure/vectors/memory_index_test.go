package vectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaweaver/domain/core/valueobjects"
)

func TestMemoryIndex_UpsertAndGet(t *testing.T) {
	index := NewMemoryIndex(zap.NewNop())
	ctx := context.Background()
	profileID := valueobjects.NewProfileID()
	nodeID := valueobjects.NewNodeID()

	vector := []float32{1, 0, 0}
	require.NoError(t, index.Upsert(ctx, profileID, nodeID, vector))

	got, ok, err := index.Get(ctx, profileID, nodeID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vector, got)

	// The stored copy must not alias the caller's slice
	vector[0] = 99
	got, _, _ = index.Get(ctx, profileID, nodeID)
	assert.Equal(t, float32(1), got[0])
}

func TestMemoryIndex_GetMissing(t *testing.T) {
	index := NewMemoryIndex(zap.NewNop())
	ctx := context.Background()

	_, ok, err := index.Get(ctx, valueobjects.NewProfileID(), valueobjects.NewNodeID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryIndex_NearestOrdering(t *testing.T) {
	index := NewMemoryIndex(zap.NewNop())
	ctx := context.Background()
	profileID := valueobjects.NewProfileID()

	near := valueobjects.NewNodeID()
	mid := valueobjects.NewNodeID()
	far := valueobjects.NewNodeID()

	require.NoError(t, index.Upsert(ctx, profileID, near, []float32{1, 0, 0}))
	require.NoError(t, index.Upsert(ctx, profileID, mid, []float32{1, 1, 0}))
	require.NoError(t, index.Upsert(ctx, profileID, far, []float32{0, 1, 0}))

	matches, err := index.Nearest(ctx, profileID, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, near, matches[0].NodeID)
	assert.Equal(t, mid, matches[1].NodeID)
	assert.Equal(t, far, matches[2].NodeID)
	assert.InDelta(t, 0.0, matches[0].Distance, 1e-9)
	assert.InDelta(t, 1.0, matches[2].Distance, 1e-9)
}

func TestMemoryIndex_NearestCapsAtK(t *testing.T) {
	index := NewMemoryIndex(zap.NewNop())
	ctx := context.Background()
	profileID := valueobjects.NewProfileID()

	for i := 0; i < 10; i++ {
		require.NoError(t, index.Upsert(ctx, profileID, valueobjects.NewNodeID(), []float32{1, float32(i), 0}))
	}

	matches, err := index.Nearest(ctx, profileID, []float32{1, 0, 0}, 4)
	require.NoError(t, err)
	assert.Len(t, matches, 4)
}

func TestMemoryIndex_PartitionIsolation(t *testing.T) {
	index := NewMemoryIndex(zap.NewNop())
	ctx := context.Background()
	profileA := valueobjects.NewProfileID()
	profileB := valueobjects.NewProfileID()

	require.NoError(t, index.Upsert(ctx, profileA, valueobjects.NewNodeID(), []float32{1, 0, 0}))

	matches, err := index.Nearest(ctx, profileB, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	count, err := index.Count(ctx, profileB)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryIndex_DropPartition(t *testing.T) {
	index := NewMemoryIndex(zap.NewNop())
	ctx := context.Background()
	profileID := valueobjects.NewProfileID()
	nodeID := valueobjects.NewNodeID()

	require.NoError(t, index.Upsert(ctx, profileID, nodeID, []float32{1, 0, 0}))
	require.NoError(t, index.DropPartition(ctx, profileID))

	_, ok, err := index.Get(ctx, profileID, nodeID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryIndex_Delete(t *testing.T) {
	index := NewMemoryIndex(zap.NewNop())
	ctx := context.Background()
	profileID := valueobjects.NewProfileID()
	keep := valueobjects.NewNodeID()
	drop := valueobjects.NewNodeID()

	require.NoError(t, index.Upsert(ctx, profileID, keep, []float32{1, 0, 0}))
	require.NoError(t, index.Upsert(ctx, profileID, drop, []float32{0, 1, 0}))
	require.NoError(t, index.Delete(ctx, profileID, drop))

	count, err := index.Count(ctx, profileID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_RoundTrip(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "graph:abc", "payload", 60))

	value, ok := cache.Get(ctx, "graph:abc")
	require.True(t, ok)
	assert.Equal(t, "payload", value)
}

func TestInMemoryCache_ExpiredEntriesAreInvisible(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "graph:abc", "payload", -1))

	_, ok := cache.Get(ctx, "graph:abc")
	assert.False(t, ok)
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	cache := NewInMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", 1, 60))
	require.NoError(t, cache.Set(ctx, "b", 2, 60))

	require.NoError(t, cache.Delete(ctx, "a"))
	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, cache.Clear(ctx))
	_, ok = cache.Get(ctx, "b")
	assert.False(t, ok)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRateLimiter_AllowsUpToLimit(t *testing.T) {
	limiter := NewClientRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestClientRateLimiter_TracksClientsIndependently(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = limiter.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, allowed, "one client's exhaustion must not throttle another")
}

func TestClientRateLimiter_ResetClearsTheWindow(t *testing.T) {
	limiter := NewClientRateLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "client-a"))

	allowed, err = limiter.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, allowed)
}

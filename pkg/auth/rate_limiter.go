// Package auth holds request admission: per-client rate limiting for
// the public API surface.
package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether a client may make another request
type RateLimiter interface {
	// Allow reports whether the client identified by key is under its limit
	Allow(ctx context.Context, key string) (bool, error)

	// Reset forgets the client's current window
	Reset(ctx context.Context, key string) error
}

// ClientRateLimiter throttles clients with in-process sliding windows.
// State lives in memory, so it only holds for a single API instance;
// multi-instance deployments use the DynamoDB-backed limiter.
type ClientRateLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	limit   int
	window  time.Duration
}

// NewClientRateLimiter creates a limiter allowing limit requests per
// client within each window
func NewClientRateLimiter(limit int, window time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
}

// Allow records the request when the client is under its limit
func (l *ClientRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	recent := l.clients[key][:0]
	for _, at := range l.clients[key] {
		if at.After(cutoff) {
			recent = append(recent, at)
		}
	}

	if len(recent) >= l.limit {
		l.clients[key] = recent
		return false, nil
	}

	l.clients[key] = append(recent, now)
	return true, nil
}

// Reset forgets the client's recorded requests
func (l *ClientRateLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.clients, key)
	return nil
}

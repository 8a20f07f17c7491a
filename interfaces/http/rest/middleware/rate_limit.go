package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ideaweaver/pkg/auth"

	"go.uber.org/zap"
)

// remainingReporter is implemented by limiters that can report budget
// left in the current window
type remainingReporter interface {
	Remaining(ctx context.Context, key string) (int, time.Duration, error)
}

// RateLimit applies per-client-IP rate limiting. The limiter decides;
// this middleware only maps a denial to 429.
func RateLimit(limiter auth.RateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				// Fail open: a limiter outage must not take the API down
				logger.Warn("Rate limiter check failed", zap.String("ip", ip), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logger.Info("Request rate limited", zap.String("ip", ip), zap.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":true,"message":"Rate limit exceeded"}`))
				return
			}

			if reporter, ok := limiter.(remainingReporter); ok {
				if remaining, resetIn, err := reporter.Remaining(r.Context(), ip); err == nil {
					w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
					w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(resetIn).Unix(), 10))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the originating client IP, preferring proxy headers
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

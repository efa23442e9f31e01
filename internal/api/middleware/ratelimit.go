package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/taskhub/taskhub-api/internal/api/shared"
	"golang.org/x/time/rate"
)

// rateLimitMessage is the response body sent when a client exhausts its
// attempts on the auth endpoints.
const rateLimitMessage = "Too many requests, please try again later"

// RateLimiterConfig holds the settings for the auth-endpoint rate limiter.
// Max attempts refill evenly over Window, so a client that burns through
// its burst waits Window/Max between further attempts.
type RateLimiterConfig struct {
	Window          time.Duration
	Max             int
	CleanupInterval time.Duration
}

// clientLimiter pairs a token bucket with its last access time so that
// idle entries can be dropped by the cleanup loop.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter enforces a per-client attempt budget on the endpoints it
// wraps. Clients are keyed by IP; state is in-process only.
type RateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter creates a new RateLimiter and starts its background
// cleanup loop. Call Stop when the limiter is no longer needed.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		config:   config,
		limiters: make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Limit wraps next with the per-client attempt budget, responding 429
// with a descriptive message on exceedance.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		if !rl.allow(key) {
			slog.Warn("rate limit exceeded",
				slog.String("client", key),
				slog.String("path", r.URL.Path))
			shared.RespondWithError(w, r, http.StatusTooManyRequests, rateLimitMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow consumes one attempt for the given client, creating its bucket on
// first sight.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(
				rate.Limit(float64(rl.config.Max)/rl.config.Window.Seconds()),
				rl.config.Max,
			),
		}
		rl.limiters[key] = entry
	}
	entry.lastAccess = time.Now()

	return entry.limiter.Allow()
}

// cleanupLoop periodically drops limiters that have been idle for longer
// than the configured window, bounding memory use.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.Window)
			rl.mu.Lock()
			for key, entry := range rl.limiters {
				if entry.lastAccess.Before(cutoff) {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

// clientKey identifies the client for rate limiting purposes. The port is
// stripped so reconnecting clients share a bucket.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

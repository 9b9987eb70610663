package httpmiddleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window.
	Max int
	// Window is the length of each window.
	Window time.Duration
	// KeyFunc extracts the limit key from a request; defaults to client IP.
	KeyFunc func(*http.Request) string
}

// bucket counts requests in the current and previous windows. The effective
// count is a weighted blend of the two, approximating a sliding window.
type bucket struct {
	prev      int
	curr      int
	currStart time.Time
}

type limiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiter{cfg: cfg, buckets: make(map[string]*bucket), now: time.Now}
}

// allow records a request for key and reports whether it fits the limit.
func (l *limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{currStart: now.Truncate(l.cfg.Window)}
		l.buckets[key] = b
	}
	l.advance(b, now)

	elapsed := now.Sub(b.currStart)
	weight := 1 - float64(elapsed)/float64(l.cfg.Window)
	estimated := float64(b.prev)*weight + float64(b.curr)
	if estimated >= float64(l.cfg.Max) {
		return false
	}
	b.curr++
	return true
}

// advance rolls the bucket forward to the window containing now.
func (l *limiter) advance(b *bucket, now time.Time) {
	start := now.Truncate(l.cfg.Window)
	switch {
	case start.Equal(b.currStart):
	case start.Sub(b.currStart) == l.cfg.Window:
		b.prev = b.curr
		b.curr = 0
		b.currStart = start
	default:
		b.prev = 0
		b.curr = 0
		b.currStart = start
	}
}

// sweep drops buckets idle for two full windows.
func (l *limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-2 * l.cfg.Window)
	for key, b := range l.buckets {
		if b.currStart.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// RateLimit returns a middleware enforcing cfg per client. Rejected requests
// get 429 with a JSON error body.
func RateLimit(cfg RateLimitConfig) Middleware {
	return rateLimitWith(newLimiter(cfg))
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that evicts
// idle clients until ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()
	return rateLimitWith(l)
}

func rateLimitWith(l *limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(l.cfg.KeyFunc(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", l.cfg.Window.String())
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-key sliding window rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window.
	Max int
	// Window is the sliding window duration.
	Window time.Duration
	// KeyFunc derives the limiter key from a request. Nil means client IP.
	KeyFunc func(*http.Request) string
}

// bucket counts requests for one key across the current fixed window and the
// one before it. window is the index of the current fixed window on the wall
// clock (now / Window).
type bucket struct {
	window int64
	count  int
	prev   int
}

type limiter struct {
	max     int
	window  time.Duration
	keyFunc func(*http.Request) string

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = clientIP
	}
	return &limiter{
		max:     cfg.Max,
		window:  cfg.Window,
		keyFunc: keyFunc,
		buckets: make(map[string]*bucket),
	}
}

// take records one request for key and reports whether it fits the limit.
// The effective count interpolates between the previous and current fixed
// windows, weighting the previous one by how much of it still overlaps the
// sliding window ending at now.
func (l *limiter) take(key string, now time.Time) (remaining int, reset time.Time, ok bool) {
	nanos := int64(l.window)
	idx := now.UnixNano() / nanos

	l.mu.Lock()
	defer l.mu.Unlock()

	b, found := l.buckets[key]
	if !found {
		b = &bucket{window: idx}
		l.buckets[key] = b
	}
	if b.window != idx {
		if b.window == idx-1 {
			b.prev = b.count
		} else {
			b.prev = 0
		}
		b.count = 0
		b.window = idx
	}

	frac := float64(now.UnixNano()%nanos) / float64(nanos)
	weighted := float64(b.prev)*(1-frac) + float64(b.count)
	reset = time.Unix(0, (idx+1)*nanos)

	if weighted >= float64(l.max) {
		return 0, reset, false
	}

	b.count++
	remaining = l.max - int(weighted) - 1
	if remaining < 0 {
		remaining = 0
	}
	return remaining, reset, true
}

// sweep drops buckets that no longer influence the sliding window.
func (l *limiter) sweep(now time.Time) {
	idx := now.UnixNano() / int64(l.window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.window < idx-1 {
			delete(l.buckets, key)
		}
	}
}

// RateLimit returns a middleware enforcing a per-key sliding window limit.
// Exceeding it yields 429 with a JSON body; every response carries
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset.
//
// Stale keys accumulate until evicted; use RateLimitWithCleanup for
// long-running servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware()
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that evicts
// stale keys every two windows. The goroutine exits when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(2 * l.window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.sweep(now)
			}
		}
	}()
	return l.middleware()
}

const rateLimitBody = `{"code":429,"message":"rate limit exceeded"}`

func (l *limiter) middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, reset, ok := l.take(l.keyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !ok {
				retryAfter := math.Ceil(time.Until(reset).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				h.Set("Retry-After", strconv.Itoa(int(retryAfter)))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(rateLimitBody))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the client address, preferring X-Forwarded-For (first
// entry), then X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

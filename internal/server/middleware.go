package server

import (
	"math"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultWriteRateLimitWindow = time.Minute

type rateLimitBucket struct {
	windowStart time.Time
	count       int
	lastSeenAt  time.Time
}

// writeRateLimiter is a fixed-window counter per client IP and scope.
type writeRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]rateLimitBucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// newWriteRateLimiter returns nil when limit is not positive; a nil limiter
// lets every request through.
func newWriteRateLimiter(limit int, window time.Duration) *writeRateLimiter {
	if limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = defaultWriteRateLimitWindow
	}
	return &writeRateLimiter{
		buckets: make(map[string]rateLimitBucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

func (l *writeRateLimiter) limitByIP(scope string) func(http.Handler) http.Handler {
	scope = strings.TrimSpace(scope)
	if l == nil || scope == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + normalizedClientIP(r)
			if allowed, retryAfter := l.allow(key); !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeErrorJSON(w, http.StatusTooManyRequests, msgRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *writeRateLimiter) allow(key string) (bool, time.Duration) {
	if l == nil {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked(now)

	bucket := l.buckets[key]
	if bucket.windowStart.IsZero() || now.Sub(bucket.windowStart) >= l.window {
		l.buckets[key] = rateLimitBucket{windowStart: now, count: 1, lastSeenAt: now}
		return true, 0
	}

	bucket.lastSeenAt = now
	if bucket.count >= l.limit {
		l.buckets[key] = bucket
		return false, max(l.window-now.Sub(bucket.windowStart), 0)
	}

	bucket.count++
	l.buckets[key] = bucket
	return true, 0
}

func (l *writeRateLimiter) cleanupLocked(now time.Time) {
	staleAfter := l.window * 2
	for key, bucket := range l.buckets {
		if now.Sub(bucket.lastSeenAt) >= staleAfter {
			delete(l.buckets, key)
		}
	}
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func normalizedClientIP(r *http.Request) string {
	if r == nil {
		return "unknown"
	}
	value := strings.TrimSpace(r.RemoteAddr)
	if value == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(value); err == nil {
		return addr.Addr().String()
	}
	if host, _, err := net.SplitHostPort(value); err == nil && strings.TrimSpace(host) != "" {
		return strings.TrimSpace(strings.Trim(host, "[]"))
	}
	value = strings.Trim(value, "[]")
	if addr, err := netip.ParseAddr(value); err == nil {
		return addr.String()
	}
	return value
}

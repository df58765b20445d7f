package httpmiddleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window.
	Max int
	// Window is the duration of each window.
	Window time.Duration
	// KeyFunc extracts the limiter key from a request. Defaults to the
	// client IP (X-Forwarded-For, then X-Real-IP, then RemoteAddr).
	KeyFunc func(*http.Request) string
}

// window counts requests in one fixed window per client key.
type window struct {
	start time.Time
	count int
}

type limiter struct {
	cfg     RateLimitConfig
	mu      sync.Mutex
	windows map[string]*window
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiter{
		cfg:     cfg,
		windows: make(map[string]*window),
	}
}

// allow records a request for key and reports whether it is within the limit,
// along with the remaining budget and when the window resets.
func (l *limiter) allow(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	win, exists := l.windows[key]
	if !exists || now.Sub(win.start) >= l.cfg.Window {
		win = &window{start: now}
		l.windows[key] = win
	}
	resetAt = win.start.Add(l.cfg.Window)

	if win.count >= l.cfg.Max {
		return 0, resetAt, false
	}
	win.count++
	return l.cfg.Max - win.count, resetAt, true
}

func (l *limiter) evictStale(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, win := range l.windows {
		if now.Sub(win.start) >= 2*l.cfg.Window {
			delete(l.windows, key)
		}
	}
}

// RateLimit returns a middleware enforcing a per-key rate limit. Exceeded
// requests get 429 with a JSON body; every response carries the
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset headers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return rateLimitWith(newLimiter(cfg))
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that evicts
// stale client entries. The goroutine stops when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evictStale(now)
			}
		}
	}()
	return rateLimitWith(l)
}

func rateLimitWith(l *limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			remaining, resetAt, ok := l.allow(l.cfg.KeyFunc(r), now)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := int(resetAt.Sub(now).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// May be a comma-separated chain; the first hop is the client.
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
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

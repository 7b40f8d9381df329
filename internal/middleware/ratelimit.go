package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"feedbackwidget/internal/config"
	"feedbackwidget/internal/httputil"

	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Too many requests. Please wait a moment and try again."

// pruneThreshold is the number of tracked keys above which idle limiters
// are dropped on the next insert.
const pruneThreshold = 1024

// RateLimiter is a per-user token bucket: Max requests, refilled evenly
// over Per. Requests without a user are keyed by client IP.
type RateLimiter struct {
	name     string
	throttle config.Throttle
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter for one route group
func NewRateLimiter(name string, throttle config.Throttle, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		name:     name,
		throttle: throttle,
		logger:   logger,
		now:      time.Now,
		limiters: make(map[string]*limiterEntry),
	}
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	entry, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= pruneThreshold {
			l.prune(now)
		}
		every := l.throttle.Per / time.Duration(l.throttle.Max)
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(every), l.throttle.Max)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	l.mu.Unlock()

	return entry.limiter.AllowN(now, 1)
}

// prune drops limiters idle for a full window; their buckets are full again
// so forgetting them changes nothing. Caller holds mu.
func (l *RateLimiter) prune(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= l.throttle.Per {
			delete(l.limiters, key)
		}
	}
}

// Middleware rejects requests over budget with 429 and a Retry-After header.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := httputil.GetUserID(r)
		if key == "" {
			key = "ip:" + clientIP(r)
		}

		if !l.Allow(key) {
			l.logger.Info("rate limited", "limiter", l.name, "key", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
			httputil.RespondError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.throttle.Max))
		next.ServeHTTP(w, r)
	})
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func (l *RateLimiter) retryAfterSeconds() int {
	every := l.throttle.Per / time.Duration(l.throttle.Max)
	return int(math.Ceil(every.Seconds()))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/conneroisu/uiforge/internal/errors"
	"github.com/conneroisu/uiforge/internal/logging"
)

const bucketExpiry = 10 * time.Minute

// RateLimiter is a per-client token bucket limiter. A limiter with a zero
// rate allows everything.
type RateLimiter struct {
	perMinute int
	logger    logging.Logger
	now       func() time.Time

	mu      sync.Mutex
	buckets map[string]*tokenBucket

	stopOnce sync.Once
	stop     chan struct{}
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

// RateLimitResult is the outcome of one Check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// NewRateLimiter allows perMinute requests per key with a burst of the same
// size.
func NewRateLimiter(perMinute int, logger logging.Logger) *RateLimiter {
	if logger == nil {
		logger = logging.NewNop()
	}
	rl := &RateLimiter{
		perMinute: perMinute,
		logger:    logger,
		now:       time.Now,
		buckets:   make(map[string]*tokenBucket),
		stop:      make(chan struct{}),
	}
	if perMinute > 0 {
		go rl.cleanup()
	}

	return rl
}

// Enabled reports whether requests are limited at all.
func (rl *RateLimiter) Enabled() bool {
	return rl.perMinute > 0
}

// Check consumes one token for key.
func (rl *RateLimiter) Check(key string) RateLimitResult {
	if !rl.Enabled() {
		return RateLimitResult{Allowed: true}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.perMinute), lastRefill: now}
		rl.buckets[key] = b
	}
	b.lastAccess = now

	limit := float64(rl.perMinute)
	b.tokens += now.Sub(b.lastRefill).Minutes() * limit
	if b.tokens > limit {
		b.tokens = limit
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return RateLimitResult{Allowed: true, Remaining: int(b.tokens)}
	}

	wait := time.Duration((1 - b.tokens) / limit * float64(time.Minute))
	return RateLimitResult{Allowed: false, RetryAfter: wait}
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, b := range rl.buckets {
				if now.Sub(b.lastAccess) > bucketExpiry {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// RateLimitMiddleware rejects requests over the limit with 429.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			result := limiter.Check(ip)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.perMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				secs := int(result.RetryAfter.Seconds() + 0.999)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				limiter.logger.Warn(r.Context(),
					errors.NewValidationError("RATE_LIMIT_EXCEEDED", "Rate limit exceeded"),
					"Rate limit exceeded",
					"client_ip", ip, "path", r.URL.Path)
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP relies on chi's RealIP middleware having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}

	return host
}

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/juju/ratelimit"
	"github.com/labstack/echo/v4"

	"github.com/pharmascript/pharmascript/pkg/problem"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int64
	// Skipper exempts requests, e.g. health checks, from limiting.
	Skipper func(c echo.Context) bool
	// OnBucketsChanged is called with the number of tracked clients.
	OnBucketsChanged func(n int)
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 50,
		BurstSize:         100,
	}
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	cfg     RateLimitConfig
	clients map[string]*ratelimit.Bucket
	mu      sync.RWMutex
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{cfg: cfg, clients: make(map[string]*ratelimit.Bucket)}
}

func (rl *RateLimiter) bucket(key string) *ratelimit.Bucket {
	rl.mu.RLock()
	b, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		return b
	}

	rl.mu.Lock()
	if b, ok = rl.clients[key]; !ok {
		b = ratelimit.NewBucketWithRate(rl.cfg.RequestsPerSecond, rl.cfg.BurstSize)
		rl.clients[key] = b
	}
	n := len(rl.clients)
	rl.mu.Unlock()

	if !ok && rl.cfg.OnBucketsChanged != nil {
		rl.cfg.OnBucketsChanged(n)
	}
	return b
}

// Cleanup forgets clients whose buckets have refilled completely and returns
// how many remain.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	for key, b := range rl.clients {
		if b.Available() >= b.Capacity() {
			delete(rl.clients, key)
		}
	}
	n := len(rl.clients)
	rl.mu.Unlock()

	if rl.cfg.OnBucketsChanged != nil {
		rl.cfg.OnBucketsChanged(n)
	}
	return n
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

// Middleware limits each client, keyed by authenticated user when known and
// by IP otherwise.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	limit := strconv.FormatInt(rl.cfg.BurstSize, 10)
	rate := strconv.FormatFloat(rl.cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rl.cfg.RequestsPerSecond <= 0 || (rl.cfg.Skipper != nil && rl.cfg.Skipper(c)) {
				return next(c)
			}

			key := c.RealIP()
			if uid, ok := c.Get("user_id").(string); ok && uid != "" {
				key = "user:" + uid
			}

			b := rl.bucket(key)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Rate", rate)

			if b.TakeAvailable(1) < 1 {
				wait := time.Duration(float64(time.Second) / rl.cfg.RequestsPerSecond)
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
				return writeProblem(c, http.StatusTooManyRequests, "Too Many Requests", problem.KeyTooManyRequests,
					"rate limit exceeded")
			}

			h.Set("X-RateLimit-Remaining", strconv.FormatInt(b.Available(), 10))
			return next(c)
		}
	}
}

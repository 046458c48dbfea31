package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/xgrltd/storefront/internal/infrastructure/logger"
	"github.com/xgrltd/storefront/internal/interfaces/http/dto"
)

// RateLimiter hands each client a token bucket holding limit requests that
// refills over period
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*bucket
	limit   int
	period  time.Duration
	now     func() time.Time
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows bursts of limit requests per key, refilled evenly
// across period
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*bucket),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

func (rl *RateLimiter) Limit() int { return rl.limit }

func (rl *RateLimiter) every() rate.Limit {
	if rl.limit <= 0 || rl.period <= 0 {
		return 0
	}
	return rate.Every(rl.period / time.Duration(rl.limit))
}

// bucketFor returns key's bucket, creating a full one. Callers hold mu.
func (rl *RateLimiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := rl.clients[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(rl.every(), rl.limit)}
		rl.clients[key] = b
	}
	b.lastSeen = now
	return b
}

// Allow takes a token from key's bucket
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	return rl.bucketFor(key, now).tokens.AllowN(now, 1)
}

// Remaining counts the whole tokens left in key's bucket
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok {
		return rl.limit
	}
	return max(0, int(math.Floor(b.tokens.TokensAt(rl.now()))))
}

// RetryAfter is how long key waits for its next token
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok {
		return 0
	}
	now := rl.now()
	missing := 1 - b.tokens.TokensAt(now)
	if missing <= 0 {
		return 0
	}
	if rl.limit <= 0 {
		return rl.period
	}
	return time.Duration(missing * float64(rl.period/time.Duration(rl.limit)))
}

// Cleanup forgets clients idle for a full period, whose buckets have
// refilled anyway, and returns how many it dropped
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	dropped := 0
	for key, b := range rl.clients {
		if now.Sub(b.lastSeen) >= rl.period {
			delete(rl.clients, key)
			dropped++
		}
	}
	return dropped
}

// Run calls Cleanup every period until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey limits requests per key extracted from the request
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))

		if !limiter.Allow(key) {
			wait := int(math.Ceil(limiter.RetryAfter(key).Seconds()))
			c.Header("Retry-After", strconv.Itoa(max(wait, 1)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
				c.GetString(logger.GinRequestIDKey),
			))
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/internal/domain"
	"pcd-jobs-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit  int
	Window time.Duration
	// KeyFunc picks the bucket; default is the client IP
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
}

// DefaultRateLimitConfig is the per-IP limit applied to every route
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     120,
		Window:    time.Minute,
		KeyPrefix: "rl:ip:",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
	}
}

// WriteRateLimitConfig limits applications and messages per actor
func WriteRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:     20,
		Window:    time.Minute,
		KeyPrefix: "rl:write:",
		KeyFunc: func(c *gin.Context) string {
			if actor := CurrentActor(c); actor.Role != domain.RoleUnknown {
				return actor.ID.String()
			}
			return c.ClientIP()
		},
	}
}

// Atomic INCR with expiry on first hit; returns {count, ttl}
const rateLimitScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('TTL', KEYS[1])}
`

// RateLimiter counts requests in fixed windows. It uses Redis when a client
// is given and falls back to process memory when Redis is absent or failing.
type RateLimiter struct {
	client redis.Scripter
	mu     sync.Mutex
	local  map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a limiter; client may be nil.
func NewRateLimiter(client redis.Scripter) *RateLimiter {
	return &RateLimiter{client: client, local: map[string]*window{}}
}

// Middleware enforces cfg on the routes it is attached to
func (l *RateLimiter) Middleware(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + cfg.KeyFunc(c)
		count, resetAt := l.hit(c.Request.Context(), key, cfg)

		remaining := cfg.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if count > cfg.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			logger.Log.WarnContext(c.Request.Context(), "Rate limit exceeded", "key", key, "path", c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Time) {
	if l.client != nil {
		count, resetAt, err := l.hitRedis(ctx, key, cfg)
		if err == nil {
			return count, resetAt
		}
		logger.Log.WarnContext(ctx, "Rate limiter falling back to memory", "error", err)
	}
	return l.hitLocal(key, cfg, time.Now())
}

func (l *RateLimiter) hitRedis(ctx context.Context, key string, cfg RateLimitConfig) (int, time.Time, error) {
	result, err := l.client.Eval(ctx, rateLimitScript, []string{key}, int(cfg.Window.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

func (l *RateLimiter) hitLocal(key string, cfg RateLimitConfig, now time.Time) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.local[key]
	if !ok || now.After(w.resetAt) {
		// Expired windows are dropped lazily
		if len(l.local) > 10000 {
			for k, old := range l.local {
				if now.After(old.resetAt) {
					delete(l.local, k)
				}
			}
		}
		w = &window{resetAt: now.Add(cfg.Window)}
		l.local[key] = w
	}
	w.count++
	return w.count, w.resetAt
}

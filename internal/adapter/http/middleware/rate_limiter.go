package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"hypertodo/internal/core/telemetry"
	"hypertodo/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]config.RateLimitConfig
	logger  *config.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.Mutex
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

// NewRateLimiter limits requests per client ip. Keys of limits are "METHOD /route" or "default".
func NewRateLimiter(logger *config.Logger, metrics *telemetry.AppMetrics, limits map[string]config.RateLimitConfig) *RateLimiter {
	configs := make(map[string]config.RateLimitConfig, len(limits)+1)
	for key, limit := range limits {
		configs[key] = limit
	}

	if _, ok := configs["default"]; !ok {
		configs["default"] = config.RateLimitConfig{Requests: 600, Window: time.Minute}
	}

	return &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  configs,
		logger:  logger,
		metrics: metrics,
	}
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		methodPath := c.Request.Method + " " + path

		limit, exists := rl.lookup(methodPath)
		if !exists {
			limit, _ = rl.lookup("default")
		}

		key := fmt.Sprintf("rate_limit:%s:%s", methodPath, clientKey(c))

		allowed, remaining, resetTime := rl.checkRateLimit(key, limit)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimitHit(c.Request.Context(), path)
			}

			rl.logger.WarnWithTrace(c.Request.Context(), "Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", limit.Requests),
				zap.Duration("window", limit.Window))

			c.Header("Retry-After", strconv.Itoa(int(time.Until(resetTime).Seconds())+1))
			c.String(http.StatusTooManyRequests, fmt.Sprintf("Too many requests. Limit: %d per %v", limit.Requests, limit.Window))
			c.Abort()
			return
		}

		if rl.metrics != nil {
			rl.metrics.RecordRateLimitAllowed(c.Request.Context(), path)
		}

		c.Next()
	}
}

func (rl *RateLimiter) lookup(key string) (config.RateLimitConfig, bool) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limit, ok := rl.config[key]
	return limit, ok
}

func (rl *RateLimiter) checkRateLimit(key string, limit config.RateLimitConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if entry, found := rl.cache.Get(key); found {
		rateLimitEntry := entry.(RateLimitEntry)

		if now.After(rateLimitEntry.ResetTime) {
			resetTime := now.Add(limit.Window)
			rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, limit.Window)
			return true, limit.Requests - 1, resetTime
		}

		if rateLimitEntry.Count >= limit.Requests {
			return false, 0, rateLimitEntry.ResetTime
		}

		rateLimitEntry.Count++
		rl.cache.Set(key, rateLimitEntry, time.Until(rateLimitEntry.ResetTime))

		return true, limit.Requests - rateLimitEntry.Count, rateLimitEntry.ResetTime
	}

	resetTime := now.Add(limit.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, limit.Window)

	return true, limit.Requests - 1, resetTime
}

// clientKey relies on gin's trusted proxy list, so forwarded headers only count behind a known proxy.
func clientKey(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	return "unknown"
}

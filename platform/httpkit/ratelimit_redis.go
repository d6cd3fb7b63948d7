package httpkit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"cardgen_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitMinutePrefix = "rate_limit:minute:"
	rateLimitHourPrefix   = "rate_limit:hour:"
)

// RedisRateLimiter enforces fixed-window request limits per client IP with
// counters shared across instances through Redis. When Redis is unreachable
// requests are let through unchanged.
type RedisRateLimiter struct {
	client    *redis.Client
	perMinute int
	perHour   int
	log       *logger.Logger
}

// NewRedisRateLimiter creates a Redis-backed fixed-window rate limiter.
func NewRedisRateLimiter(client *redis.Client, perMinute, perHour int, log *logger.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		perMinute: perMinute,
		perHour:   perHour,
		log:       log,
	}
}

// RateLimit returns a middleware that rejects requests once a client IP has
// used up either the per-minute or the per-hour window.
func (r *RedisRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, err := r.allow(c.Request.Context(), ip)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			if r.log != nil {
				r.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"detail":      "Too many requests. Please try again later.",
				"retry_after": 60,
			})
			return
		}

		c.Next()
	}
}

func (r *RedisRateLimiter) allow(ctx context.Context, ip string) (bool, error) {
	minuteKey := rateLimitMinutePrefix + ip
	hourKey := rateLimitHourPrefix + ip

	counts, err := r.client.MGet(ctx, minuteKey, hourKey).Result()
	if err != nil {
		return false, err
	}

	if windowFull(counts[0], r.perMinute) || windowFull(counts[1], r.perHour) {
		return false, nil
	}

	pipe := r.client.Pipeline()
	pipe.Incr(ctx, minuteKey)
	pipe.Expire(ctx, minuteKey, time.Minute)
	pipe.Incr(ctx, hourKey)
	pipe.Expire(ctx, hourKey, time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}

func windowFull(raw interface{}, limit int) bool {
	text, ok := raw.(string)
	if !ok {
		return false
	}
	count, err := strconv.Atoi(text)
	if err != nil {
		return false
	}
	return count >= limit
}

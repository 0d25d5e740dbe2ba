package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit is a fixed-window limit per client IP.
type RateLimit struct {
	Prefix   string
	Requests int
	Window   time.Duration
}

// RateLimiter applies the site-wide limit.
func RateLimiter(redisClient *redis.Client, cfg *config.Config, log logrus.FieldLogger) gin.HandlerFunc {
	return Limit(redisClient, RateLimit{Prefix: "rate_limit", Requests: cfg.RateLimitRequests, Window: cfg.RateLimitDuration}, log)
}

// ContactRateLimiter applies the stricter limit on contact submissions.
func ContactRateLimiter(redisClient *redis.Client, cfg *config.Config, log logrus.FieldLogger) gin.HandlerFunc {
	return Limit(redisClient, RateLimit{Prefix: "rate_limit:contact", Requests: cfg.ContactRateLimitRequests, Window: cfg.ContactRateLimitDuration}, log)
}

// Limit rejects requests beyond limit.Requests per window with 429. Without a
// reachable Redis every request is let through.
func Limit(redisClient *redis.Client, limit RateLimit, log logrus.FieldLogger) gin.HandlerFunc {
	log = log.WithField("limiter", limit.Prefix)
	return func(c *gin.Context) {
		if redisClient == nil || limit.Requests <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		key := fmt.Sprintf("%s:%s", limit.Prefix, c.ClientIP())
		count, ttl, err := hit(ctx, redisClient, key, limit.Window)
		if err != nil {
			log.WithError(err).Warn("Rate limiter unavailable, request allowed")
			c.Next()
			return
		}

		remaining := limit.Requests - int(count)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if remaining < 0 {
			retry := int(math.Ceil(ttl.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": retry,
			})
			return
		}

		c.Next()
	}
}

// hit counts one request in the current window and returns the count and time left.
func hit(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
	}
	ttl, err := client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// A key left without expiry would never reset.
		_ = client.Expire(ctx, key, window).Err()
		ttl = window
	}
	return count, ttl, nil
}

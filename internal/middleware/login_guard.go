package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// LoginGuard blocks an IP for blockFor after maxFailures rejected logins
// within window. A successful login resets the count.
func LoginGuard(redisClient *redis.Client, maxFailures int, window, blockFor time.Duration, log logrus.FieldLogger) gin.HandlerFunc {
	log = log.WithField("component", "login_guard")
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}

		ctx := context.WithoutCancel(c.Request.Context())
		ip := c.ClientIP()
		blockKey := fmt.Sprintf("login_blocked:%s", ip)
		failKey := fmt.Sprintf("login_failures:%s", ip)

		if ttl, err := redisClient.TTL(ctx, blockKey).Result(); err == nil && ttl > 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":                 "Too many failed login attempts",
				"blocked_until_minutes": int(ttl.Round(time.Minute).Minutes()),
			})
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusOK:
			_ = redisClient.Del(ctx, failKey).Err()
		case http.StatusUnauthorized:
			count, _, err := hit(ctx, redisClient, failKey, window)
			if err != nil {
				log.WithError(err).Warn("Failed to count login failure")
				return
			}
			if count >= int64(maxFailures) {
				_ = redisClient.Set(ctx, blockKey, "1", blockFor).Err()
				_ = redisClient.Del(ctx, failKey).Err()
				log.WithField("ip", ip).Warn("Admin login blocked after repeated failures")
			}
		}
	}
}

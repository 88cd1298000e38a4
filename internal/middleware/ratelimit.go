package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimit is a fixed-window limiter keyed by authenticated user when
// known, client IP otherwise. Redis failures let the request through.
func RateLimit(redisClient *redis.Client, keyPrefix string, maxRequests int, window time.Duration) gin.HandlerFunc {
	if redisClient == nil {
		panic("Redis client cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimit middleware")
	}
	if window <= 0 {
		panic("window duration must be positive for RateLimit middleware")
	}

	return func(c *gin.Context) {
		// Auth runs first on protected routes, so user_id is set there;
		// public routes fall back to the client address.
		subject := c.GetString("user_id")
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := keyPrefix + "ratelimit:" + subject
		ctx := c.Request.Context()

		// INCR and EXPIRE in one round trip. Re-arming the expiry on every
		// hit makes the window slide forward under sustained traffic, which
		// only makes the limit stricter.
		pipe := redisClient.Pipeline()
		incrCmd := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		// Fail open: a Redis outage must not take the API down with it.
		if _, err := pipe.Exec(ctx); err != nil {
			logrus.WithError(err).Error("RateLimit: Redis Pipeline failed, allowing request")
			c.Next()
			return
		}

		// Headers are set on both allowed and rejected responses.
		count := incrCmd.Val()
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(maxRequests) {
			logrus.WithField("subject", subject).Warn("RateLimit: limit exceeded")
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

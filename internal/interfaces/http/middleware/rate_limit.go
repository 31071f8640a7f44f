package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimit applies a fixed one-minute window per client IP using Redis counters.
// It fails open: with no client or an unreachable Redis every request passes.
func RateLimit(redisClient *redis.Client, perMinute int, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || perMinute <= 0 {
			c.Next()
			return
		}

		window := time.Now().Unix() / 60
		key := fmt.Sprintf("rate_limit:%s:%d", c.ClientIP(), window)

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		var incr *redis.IntCmd
		_, err := redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, time.Minute)
			return nil
		})
		if err != nil {
			log.WithError(err).Warn("Rate limiter unavailable")
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := perMinute - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(perMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt((window+1)*60, 10))

		if count > perMinute {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
				"code":  "rate_limited",
			})
			return
		}
		c.Next()
	}
}

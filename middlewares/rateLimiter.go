package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"streetsense-be/config"
)

// KeyFunc extracts the rate-limit key from the request. An empty key means
// the request cannot be attributed and is rejected.
type KeyFunc func(c *gin.Context) string

// UserKey keys the limit on the authenticated user.
func UserKey(c *gin.Context) string {
	userIDVal, _ := c.Get("user_id")
	userID, ok := userIDVal.(string)
	if !ok {
		return ""
	}
	return userID
}

// IPKey keys the limit on the client address. Used for unauthenticated
// endpoints such as the OTP send.
func IPKey(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimiter caps requests per key within the window, counting in Redis.
// When Redis is not configured the limiter is a no-op.
func RateLimiter(prefix string, limit int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RedisClient == nil {
			c.Next()
			return
		}

		key := keyFn(c)
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not identify requester"})
			c.Abort()
			return
		}

		ctx := config.Ctx
		redisKey := prefix + ":" + key

		// Increment the key's count with TTL
		count, err := config.RedisClient.Incr(ctx, redisKey).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := config.RedisClient.Expire(ctx, redisKey, window).Err(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := config.RedisClient.TTL(ctx, redisKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = 24 * time.Hour

// IssueRateLimiter caps issue creations per caller per 24h window, counted in
// Redis so the limit holds across server restarts. Authenticated callers are
// keyed by user id, anonymous ones by client IP.
func IssueRateLimiter(rdb *redis.Client, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "issue_limit:ip:" + c.ClientIP()
		if id, exists := c.Get("user_id"); exists {
			key = fmt.Sprintf("issue_limit:user:%d", id.(uint))
		}

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not take issue reporting down with it.
			c.Next()
			return
		}

		if count == 1 {
			rdb.Expire(ctx, key, rateLimitWindow)
		} else if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl < 0 {
			// A crash between Incr and Expire leaves the counter with no
			// expiry; re-arm it so the key cannot live forever.
			rdb.Expire(ctx, key, rateLimitWindow)
		}

		if count > int64(limit) {
			retryAfter, _ := rdb.TTL(ctx, key).Result()
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

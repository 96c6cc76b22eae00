package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
)

// AuthRateLimit caps login/registration attempts per client IP using a
// fixed redis window. With no redis client configured the limiter is a
// pass-through.
func AuthRateLimit(rdb *redis.Client, cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Duration(cfg.AuthWindowMinutes) * time.Minute
	if window <= 0 {
		window = 15 * time.Minute
	}
	max := cfg.AuthMaxAttempts
	if max <= 0 {
		max = 5
	}

	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:auth:%s", c.ClientIP())
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis being down must not lock users out.
			zap.L().Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}

		if count > int64(max) {
			response.Error(c, 429, response.CodeRateLimited, "too many attempts, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

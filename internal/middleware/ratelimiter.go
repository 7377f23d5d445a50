package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter — фиксированное окно на redis INCR+EXPIRE, по IP клиента.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func (rl *RateLimiter) Limit(name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", name, c.ClientIP())

		count, err := rl.client.Incr(c, key).Result()
		if err != nil {
			// Лимитер не должен ронять запросы при недоступном redis.
			c.Next()
			return
		}
		if count == 1 {
			rl.client.Expire(c, key, window)
		}
		if count > int64(limit) {
			ttl, _ := rl.client.TTL(c, key).Result()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": int(ttl.Seconds()),
			})
			return
		}
		c.Next()
	}
}

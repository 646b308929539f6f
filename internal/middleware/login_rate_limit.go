package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Amuam1er/limbe-food-share/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit throttles admin login attempts per client IP. Exceeding the
// attempt budget within the window triggers a one hour block; within the
// budget the attempts simply count down.
func LoginRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		clientIP := c.ClientIP()
		blockKey := fmt.Sprintf("login_blocked:%s", clientIP)
		attemptKey := fmt.Sprintf("login_attempts:%s", clientIP)

		blocked, err := redisClient.Get(ctx, blockKey).Result()
		if err == nil && blocked == "1" {
			ttl, _ := redisClient.TTL(ctx, blockKey).Result()
			c.JSON(http.StatusForbidden, gin.H{
				"error":                 "login_temporarily_blocked",
				"message":               "Too many failed login attempts. Please try again later.",
				"blocked_until_minutes": int(ttl.Minutes()),
			})
			c.Abort()
			return
		}

		count, err := redisClient.Get(ctx, attemptKey).Int()
		if err == redis.Nil {
			if err := redisClient.Set(ctx, attemptKey, 1, cfg.LoginAttemptWindow).Err(); err != nil {
				log.Printf("WARN: login limiter failed to set key: %v", err)
			}
			c.Next()
			return
		} else if err != nil {
			// Redis error, let the request through
			log.Printf("WARN: login limiter failed to get key: %v", err)
			c.Next()
			return
		}

		if count >= cfg.LoginMaxAttempts {
			_ = redisClient.Set(ctx, blockKey, "1", 1*time.Hour).Err()
			c.JSON(http.StatusForbidden, gin.H{
				"error":               "login_temporarily_blocked",
				"message":             "Too many login attempts. This address is blocked for 1 hour.",
				"blocked_for_minutes": 60,
			})
			c.Abort()
			return
		}

		redisClient.Incr(ctx, attemptKey)
		c.Next()
	}
}

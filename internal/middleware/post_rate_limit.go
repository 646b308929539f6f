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

// DonationPostRateLimit caps how many donations a single client may post per
// day. Listings are public and unauthenticated, so the limit is keyed by
// client IP. The counter resets at midnight UTC.
func DonationPostRateLimit(redisClient *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		now := time.Now().UTC()
		key := fmt.Sprintf("donation_post_limit:%s:%s", c.ClientIP(), now.Format("2006-01-02"))

		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
			if err := redisClient.Set(ctx, key, 1, midnight.Sub(now)).Err(); err != nil {
				log.Printf("WARN: donation post limiter failed to set key: %v", err)
				c.Next()
				return
			}
		} else if err != nil {
			// Redis error, let the request through
			log.Printf("WARN: donation post limiter failed to get key: %v", err)
			c.Next()
			return
		} else if count >= cfg.DonationPostsPerDay {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":             "post_limit_exceeded",
				"message":           "Too many donations posted today. Please try again tomorrow.",
				"retry_after_hours": int(ttl.Hours()),
				"posts_today":       count,
				"max_posts_per_day": cfg.DonationPostsPerDay,
			})
			c.Abort()
			return
		} else {
			redisClient.Incr(ctx, key)
		}

		c.Next()
	}
}

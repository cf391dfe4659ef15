package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ascent-climbing/ascent-backend/logger"
	"github.com/ascent-climbing/ascent-backend/services"
)

// RateLimitMiddleware throttles requests per caller. Authenticated callers
// are keyed by their user id, anonymous callers by client IP. On a Redis
// failure the request is allowed through rather than failing the API.
func RateLimitMiddleware(rateLimiter services.RateLimiterInterface, requests int, window time.Duration) gin.HandlerFunc {
	log := logger.GetLogger()

	return func(c *gin.Context) {
		identifier := rateLimitIdentifier(c)
		key := fmt.Sprintf("%s:%s:%s", c.Request.Method, c.FullPath(), identifier)

		allowed, retryAfter, err := rateLimiter.CheckLimit(c.Request.Context(), key, requests, window)
		if err != nil {
			log.Warnw("Rate limit check failed, allowing request", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			setRateLimitHeaders(c, requests, 0, retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": int(retryAfter.Seconds()),
				"message":     "Too many requests. Please try again later.",
			})
			return
		}

		setRateLimitHeaders(c, requests, requests-1, 0)
		c.Next()
	}
}

func rateLimitIdentifier(c *gin.Context) string {
	if userID := c.GetString(UserIDKey); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

func setRateLimitHeaders(c *gin.Context, limit, remaining int, retryAfter time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if retryAfter > 0 {
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(retryAfter).Unix(), 10))
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}
}

package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiterInterface is the contract rate limiting middleware depends on.
type RateLimiterInterface interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RateLimitService implements fixed-window rate limiting backed by Redis.
// Counters share the lifetime of their window, so a crashed instance never
// leaves a stale limit behind.
type RateLimitService struct {
	redis     *redis.Client
	keyPrefix string
}

func NewRateLimitService(redisClient *redis.Client) *RateLimitService {
	return &RateLimitService{
		redis:     redisClient,
		keyPrefix: "ascent:ratelimit:",
	}
}

func (s *RateLimitService) GetRedisClient() *redis.Client {
	return s.redis
}

// CheckLimit increments the counter for key and reports whether the caller is
// still within limit. When the limit is exceeded it returns the time until
// the window resets.
func (s *RateLimitService) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	rKey := s.keyPrefix + key

	pipe := s.redis.Pipeline()
	incr := pipe.Incr(ctx, rKey)
	pipe.Expire(ctx, rKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if incr.Val() > int64(limit) {
		ttl, err := s.redis.TTL(ctx, rKey).Result()
		if err != nil {
			return false, 0, err
		}
		return false, ttl, nil
	}

	return true, 0, nil
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/societyhub/backoffice-api/internal/core/domain"
)

// RateLimitStore is a fixed-window counter shared across service replicas.
// The window is encoded into the key, so INCR alone gives atomic counting;
// Redis expires stale windows on its own.
// Key format: ratelimit:<route>|<client>:<window_index>
type RateLimitStore struct {
	client *redis.Client
	window time.Duration
}

// NewRateLimitStore creates a store with the given window length.
func NewRateLimitStore(client *redis.Client, window time.Duration) *RateLimitStore {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitStore{client: client, window: window}
}

// IncrementAndGet atomically counts one attempt within the window containing
// now and returns the new count.
func (s *RateLimitStore) IncrementAndGet(ctx context.Context, key domain.RateLimitKey, now time.Time) (int64, error) {
	redisKey := s.key(key, now)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// Two windows of TTL keeps the key alive through clock skew between
	// replicas without accumulating garbage.
	pipe.Expire(ctx, redisKey, 2*s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val(), nil
}

func (s *RateLimitStore) key(key domain.RateLimitKey, now time.Time) string {
	windowIndex := now.Unix() / int64(s.window/time.Second)
	return fmt.Sprintf("ratelimit:%s:%d", key.String(), windowIndex)
}

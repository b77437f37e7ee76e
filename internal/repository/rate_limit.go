package repository

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"marketplace_chat/pkg/logger"
)

type RateLimitRepository interface {
	CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

type rateLimitRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewRateLimitRepository(redis *redis.Client, log logger.Logger) RateLimitRepository {
	return &rateLimitRepository{redis: redis, log: log}
}

func rateLimitKey(key string) string {
	return "chat:ratelimit:" + key
}

func (r *rateLimitRepository) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.redis.Get(ctx, rateLimitKey(key)).Int()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		r.log.Error("Failed to check rate limit", "error", err)
		return false, err
	}

	return count < limit, nil
}

func (r *rateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.redis.TxPipeline()
	incr := pipe.Incr(ctx, rateLimitKey(key))
	pipe.ExpireNX(ctx, rateLimitKey(key), window)
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to increment rate limit", "error", err)
		return 0, err
	}

	return incr.Val(), nil
}

type windowCounter struct {
	count   int64
	resetAt time.Time
}

type memoryRateLimitRepository struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	now      func() time.Time
}

// NewMemoryRateLimitRepository is the fixed-window fallback used when Redis is disabled.
func NewMemoryRateLimitRepository() RateLimitRepository {
	return &memoryRateLimitRepository{
		counters: make(map[string]*windowCounter),
		now:      time.Now,
	}
}

func (r *memoryRateLimitRepository) current(key string) *windowCounter {
	c, ok := r.counters[key]
	if ok && r.now().Before(c.resetAt) {
		return c
	}
	if ok {
		delete(r.counters, key)
	}
	return nil
}

func (r *memoryRateLimitRepository) CheckLimit(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.current(key)
	if c == nil {
		return true, nil
	}
	return c.count < int64(limit), nil
}

func (r *memoryRateLimitRepository) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.current(key)
	if c == nil {
		c = &windowCounter{resetAt: r.now().Add(window)}
		r.counters[key] = c
	}
	c.count++
	return c.count, nil
}

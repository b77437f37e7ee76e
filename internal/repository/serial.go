package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"marketplace_chat/pkg/logger"
)

const GroupRoomSerialKey = "chat:group_room:serial"

// SerialGenerator hands out group room serials. Serials are unique and
// increasing for the lifetime of the backing counter.
type SerialGenerator interface {
	Next(ctx context.Context) (int64, error)
}

type redisSerialGenerator struct {
	rdb *redis.Client
	key string
	log logger.Logger
}

func NewRedisSerialGenerator(rdb *redis.Client, log logger.Logger) SerialGenerator {
	return &redisSerialGenerator{rdb: rdb, key: GroupRoomSerialKey, log: log}
}

func (g *redisSerialGenerator) Next(ctx context.Context) (int64, error) {
	n, err := g.rdb.Incr(ctx, g.key).Result()
	if err != nil {
		g.log.Error("Failed to allocate group room serial", "error", err)
		return 0, fmt.Errorf("allocate serial: %w", err)
	}
	return n, nil
}

type atomicSerialGenerator struct {
	mu     sync.Mutex
	n      int64
	seeded bool
	seed   func(ctx context.Context) (int64, error)
}

// NewAtomicSerialGenerator counts in process memory. The first Next starts
// above whatever seed reports, so a restarted process does not hand out
// serials the store already holds. A nil seed starts at 1.
func NewAtomicSerialGenerator(seed func(ctx context.Context) (int64, error)) SerialGenerator {
	return &atomicSerialGenerator{seed: seed}
}

func (g *atomicSerialGenerator) Next(ctx context.Context) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.seeded && g.seed != nil {
		start, err := g.seed(ctx)
		if err != nil {
			return 0, fmt.Errorf("seed serial: %w", err)
		}
		g.n = start
	}
	g.seeded = true
	g.n++
	return g.n, nil
}

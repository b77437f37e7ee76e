package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"marketplace_chat/pkg/logger"
)

type Repositories struct {
	Rooms     ChatRoomRepository
	Messages  ChatMessageRepository
	Members   MemberDirectory
	Serials   SerialGenerator
	Audit     AuditRepository
	RateLimit RateLimitRepository
}

// NewRepositories wires the Postgres store. rdb may be nil, in which case
// serials and rate limits live in process memory.
func NewRepositories(db *pgxpool.Pool, rdb *redis.Client, log logger.Logger) *Repositories {
	repos := &Repositories{
		Rooms:    NewChatRoomRepository(db, log),
		Messages: NewChatMessageRepository(db, log),
		Members:  NewMemberDirectory(db, log),
		Audit:    NewAuditRepository(db, log),
	}
	withRedis(repos, rdb, log)

	log.Info("Postgres chat repositories initialized")
	return repos
}

// NewMemoryRepositories wires the in-memory store. The member directory is
// returned concretely so callers can seed it.
func NewMemoryRepositories(rdb *redis.Client, log logger.Logger) (*Repositories, *MemoryMemberDirectory) {
	members := NewMemoryMemberDirectory()
	repos := &Repositories{
		Rooms:    NewMemoryChatRoomRepository(),
		Messages: NewMemoryChatMessageRepository(),
		Members:  members,
		Audit:    NewMemoryAuditRepository(),
	}
	withRedis(repos, rdb, log)

	log.Warn("In-memory chat repositories initialized, data is not durable")
	return repos, members
}

func withRedis(repos *Repositories, rdb *redis.Client, log logger.Logger) {
	if rdb == nil {
		repos.Serials = NewAtomicSerialGenerator(repos.Rooms.MaxGroupSerial)
		repos.RateLimit = NewMemoryRateLimitRepository()
		log.Warn("Redis disabled, using in-process serials and rate limits")
		return
	}
	repos.Serials = NewRedisSerialGenerator(rdb, log)
	repos.RateLimit = NewRateLimitRepository(rdb, log)
}

package repository

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"marketplace_chat/internal/domain"
	"marketplace_chat/pkg/logger"
)

type AuditRepository interface {
	CreateLog(ctx context.Context, log *domain.AuditLog) error
}

type auditRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewAuditRepository(db *pgxpool.Pool, log logger.Logger) AuditRepository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) CreateLog(ctx context.Context, auditLog *domain.AuditLog) error {
	query := `
		INSERT INTO chat_audit_log (event_time, actor_member_id, actor_role, room_id, event_type, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		auditLog.EventTime, auditLog.ActorMemberID, auditLog.ActorRole,
		auditLog.RoomID, auditLog.EventType, auditLog.Payload,
	).Scan(&auditLog.ID)
	if err != nil {
		r.log.Error("Failed to create audit log", "error", err)
		return err
	}

	return nil
}

// MemoryAuditRepository keeps audit entries in a slice.
type MemoryAuditRepository struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) CreateLog(_ context.Context, auditLog *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auditLog.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, *auditLog)
	return nil
}

func (r *MemoryAuditRepository) Entries() []domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.AuditLog(nil), r.entries...)
}

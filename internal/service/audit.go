package service

import (
	"context"
	"time"

	"marketplace_chat/internal/domain"
	"marketplace_chat/internal/repository"
	"marketplace_chat/pkg/logger"
)

type AuditService interface {
	LogEvent(ctx context.Context, actorMemberID *int64, actorRole string, roomID *string, eventType string, payload map[string]any) error
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actorMemberID *int64, actorRole string, roomID *string, eventType string, payload map[string]any) error {
	if payload == nil {
		payload = make(map[string]any)
	}

	auditLog := &domain.AuditLog{
		EventTime:     time.Now(),
		ActorMemberID: actorMemberID,
		ActorRole:     actorRole,
		RoomID:        roomID,
		EventType:     eventType,
		Payload:       payload,
	}

	if err := s.auditRepo.CreateLog(ctx, auditLog); err != nil {
		s.log.Warn("Failed to write audit log", "error", err, "event_type", eventType)
		return err
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"marketplace_chat/internal/domain"
	"marketplace_chat/internal/repository"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

const maxRoomIDLength = 255

// MessageService persists messages and tracks read cursors. Callers are
// expected to serialize Accept calls per room; SentAt ordering relies on it.
type MessageService interface {
	Accept(ctx context.Context, roomID string, senderID *int64, body string) (*domain.ChatMessage, error)
	AcceptAdmin(ctx context.Context, roomID string, receiverID int64, body string) (*domain.ChatMessage, error)
	History(ctx context.Context, roomID string) ([]*domain.ChatMessage, error)
	MarkRead(ctx context.Context, roomID string, memberID int64) error
	UnreadCount(ctx context.Context, roomID string, memberID int64) (int64, error)
	ListRooms(ctx context.Context, memberID int64) ([]domain.RoomSummary, error)
}

type messageService struct {
	chatRepo repository.ChatMessageRepository
	roomRepo repository.ChatRoomRepository
	members  repository.MemberDirectory
	audit    AuditService
	now      func() time.Time
	log      logger.Logger
}

func NewMessageService(
	chatRepo repository.ChatMessageRepository,
	roomRepo repository.ChatRoomRepository,
	members repository.MemberDirectory,
	audit AuditService,
	log logger.Logger,
) MessageService {
	return &messageService{
		chatRepo: chatRepo,
		roomRepo: roomRepo,
		members:  members,
		audit:    audit,
		now:      time.Now,
		log:      log,
	}
}

// ValidRoomID reports whether id is syntactically acceptable as a room id.
func ValidRoomID(id string) bool {
	if strings.TrimSpace(id) == "" || len(id) > maxRoomIDLength || !utf8.ValidString(id) {
		return false
	}
	return strings.IndexFunc(id, unicode.IsControl) < 0
}

func (s *messageService) room(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	if !ValidRoomID(roomID) {
		return nil, fmt.Errorf("malformed room id: %w", apperrors.ErrInvalidRequest)
	}
	return s.roomRepo.GetByID(ctx, roomID)
}

func (s *messageService) Accept(ctx context.Context, roomID string, senderID *int64, body string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("message body is blank: %w", apperrors.ErrInvalidRequest)
	}

	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, err
	}

	message := &domain.ChatMessage{
		RoomID: room.ID,
		Body:   body,
	}
	if senderID == nil {
		message.Kind = domain.MessageKindAdmin
		message.SenderDisplayName = domain.AdminDisplayName
	} else {
		p := room.Participant(*senderID)
		if p == nil {
			return nil, fmt.Errorf("member %d is not in room %s: %w", *senderID, room.ID, apperrors.ErrAccessDenied)
		}
		id := *senderID
		message.SenderID = &id
		message.Kind = domain.MessageKindUser
		message.SenderDisplayName = p.DisplayName
	}

	if err := s.persist(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *messageService) AcceptAdmin(ctx context.Context, roomID string, receiverID int64, body string) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("message body is blank: %w", apperrors.ErrInvalidRequest)
	}

	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.members.Resolve(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("resolve receiver %d: %w", receiverID, err)
	}

	message := &domain.ChatMessage{
		RoomID:            room.ID,
		ReceiverID:        &receiver.ID,
		SenderDisplayName: domain.AdminDisplayName,
		Body:              body,
		Kind:              domain.MessageKindAdmin,
	}
	if err := s.persist(ctx, message); err != nil {
		return nil, err
	}

	roomRef := room.ID
	_ = s.audit.LogEvent(ctx, nil, domain.ActorRoleAdmin, &roomRef, domain.EventTypeAdminMessageSent, map[string]any{
		"message_id":  message.ID,
		"receiver_id": receiver.ID,
	})
	return message, nil
}

// persist stamps SentAt strictly after the room's latest message and writes
// message once.
func (s *messageService) persist(ctx context.Context, message *domain.ChatMessage) error {
	latest, err := s.chatRepo.GetLatest(ctx, message.RoomID)
	if err != nil {
		s.log.Error("Failed to load latest message", "error", err, "room_id", message.RoomID)
		return err
	}

	sentAt := s.timestamp()
	if latest != nil {
		if floor := latest.SentAt.Add(time.Microsecond); sentAt.Before(floor) {
			sentAt = floor
		}
	}
	message.SentAt = sentAt

	if err := s.chatRepo.Create(ctx, message); err != nil {
		s.log.Error("Failed to persist chat message", "error", err, "room_id", message.RoomID)
		return fmt.Errorf("persist message: %w", err)
	}

	s.log.Debug("Chat message accepted", "room_id", message.RoomID, "message_id", message.ID, "type", message.Kind)
	return nil
}

func (s *messageService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *messageService) History(ctx context.Context, roomID string) ([]*domain.ChatMessage, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.chatRepo.ListByRoom(ctx, room.ID)
}

func (s *messageService) MarkRead(ctx context.Context, roomID string, memberID int64) error {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasMember(memberID) {
		return fmt.Errorf("member %d is not in room %s: %w", memberID, room.ID, apperrors.ErrAccessDenied)
	}

	latest, err := s.chatRepo.GetLatest(ctx, room.ID)
	if err != nil {
		return err
	}

	// one tick behind now: a message accepted later in this same microsecond
	// is stamped now and must still count as unread
	at := s.timestamp().Add(-time.Microsecond)
	if latest != nil && latest.SentAt.After(at) {
		at = latest.SentAt
	}

	return s.roomRepo.UpdateLastReadAt(ctx, room.ID, memberID, at)
}

func (s *messageService) UnreadCount(ctx context.Context, roomID string, memberID int64) (int64, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return 0, err
	}
	return s.unread(ctx, room, memberID)
}

func (s *messageService) unread(ctx context.Context, room *domain.ChatRoom, memberID int64) (int64, error) {
	p := room.Participant(memberID)
	if p == nil {
		return 0, fmt.Errorf("member %d is not in room %s: %w", memberID, room.ID, apperrors.ErrAccessDenied)
	}
	return s.chatRepo.CountSince(ctx, room.ID, p.LastReadAt)
}

func (s *messageService) ListRooms(ctx context.Context, memberID int64) ([]domain.RoomSummary, error) {
	if _, err := s.members.Resolve(ctx, memberID); err != nil {
		return nil, fmt.Errorf("resolve member %d: %w", memberID, err)
	}

	rooms, err := s.roomRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		latest, err := s.chatRepo.GetLatest(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		unread, err := s.unread(ctx, room, memberID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.RoomSummary{
			Room:        room,
			LastMessage: latest,
			UnreadCount: unread,
		})
	}

	return summaries, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"marketplace_chat/internal/domain"
	"marketplace_chat/internal/repository"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

// RoomRegistry creates and finds chat rooms. Personal and admin rooms are
// addressed by ids derived from display names, so creating one twice returns
// the stored room.
type RoomRegistry interface {
	GetOrCreatePersonal(ctx context.Context, buyerID int64, storeRef string) (*domain.ChatRoom, error)
	CreateGroup(ctx context.Context, memberIDs []int64) (*domain.ChatRoom, error)
	GetOrCreateAdmin(ctx context.Context, memberID int64) (*domain.ChatRoom, error)
	FindByMember(ctx context.Context, memberID int64) ([]*domain.ChatRoom, error)
	Get(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	SearchByMemberName(ctx context.Context, text string) ([]*domain.ChatRoom, error)
}

// groupSerialAttempts bounds how many taken serials CreateGroup skips.
const groupSerialAttempts = 16

type roomRegistry struct {
	roomRepo repository.ChatRoomRepository
	members  repository.MemberDirectory
	serials  repository.SerialGenerator
	audit    AuditService
	now      func() time.Time
	log      logger.Logger
}

func NewRoomRegistry(
	roomRepo repository.ChatRoomRepository,
	members repository.MemberDirectory,
	serials repository.SerialGenerator,
	audit AuditService,
	log logger.Logger,
) RoomRegistry {
	return &roomRegistry{
		roomRepo: roomRepo,
		members:  members,
		serials:  serials,
		audit:    audit,
		now:      time.Now,
		log:      log,
	}
}

func (s *roomRegistry) GetOrCreatePersonal(ctx context.Context, buyerID int64, storeRef string) (*domain.ChatRoom, error) {
	if strings.TrimSpace(storeRef) == "" {
		return nil, fmt.Errorf("store ref is empty: %w", apperrors.ErrInvalidRequest)
	}

	buyer, err := s.members.Resolve(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("resolve buyer %d: %w", buyerID, err)
	}
	seller, err := s.members.ResolveStoreOwner(ctx, storeRef)
	if err != nil {
		return nil, fmt.Errorf("resolve owner of store %q: %w", storeRef, err)
	}

	room := &domain.ChatRoom{
		ID:   domain.PersonalRoomID(buyer.DisplayName, seller.DisplayName),
		Kind: domain.RoomKindPersonal,
		Participants: []domain.Participant{
			domain.NewParticipant(buyer.ID, buyer.DisplayName),
			domain.NewParticipant(seller.ID, seller.DisplayName),
		},
	}

	return s.getOrCreate(ctx, room, &buyer.ID, domain.ActorRoleMember)
}

func (s *roomRegistry) CreateGroup(ctx context.Context, memberIDs []int64) (*domain.ChatRoom, error) {
	ids := lo.Uniq(memberIDs)
	if len(ids) < 2 {
		return nil, fmt.Errorf("group room needs at least 2 distinct members, got %d: %w", len(ids), apperrors.ErrInvalidRequest)
	}

	participants := make([]domain.Participant, 0, len(ids))
	for _, id := range ids {
		member, err := s.members.Resolve(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve group member %d: %w", id, err)
		}
		participants = append(participants, domain.NewParticipant(member.ID, member.DisplayName))
	}

	for attempt := 0; attempt < groupSerialAttempts; attempt++ {
		serial, err := s.serials.Next(ctx)
		if err != nil {
			s.log.Error("Failed to allocate group room serial", "error", err)
			return nil, fmt.Errorf("allocate group serial: %w", err)
		}

		room := &domain.ChatRoom{
			ID:           domain.GroupRoomID(serial),
			Kind:         domain.RoomKindGroup,
			Participants: participants,
			CreatedAt:    s.timestamp(),
		}

		stored, created, err := s.roomRepo.SaveIfAbsent(ctx, room)
		if err != nil {
			s.log.Error("Failed to create group room", "error", err, "room_id", room.ID)
			return nil, err
		}
		if !created {
			s.log.Warn("Group room serial already taken", "room_id", room.ID)
			continue
		}

		s.log.Info("Group chat room created", "room_id", stored.ID, "participants", len(stored.Participants))
		s.logCreated(ctx, stored, nil, domain.ActorRoleSystem)
		return stored, nil
	}

	s.log.Error("Failed to find a free group room serial", "attempts", groupSerialAttempts)
	return nil, fmt.Errorf("no free group room serial after %d attempts", groupSerialAttempts)
}

func (s *roomRegistry) GetOrCreateAdmin(ctx context.Context, memberID int64) (*domain.ChatRoom, error) {
	member, err := s.members.Resolve(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("resolve member %d: %w", memberID, err)
	}

	room := &domain.ChatRoom{
		ID:   domain.AdminRoomID(member.DisplayName),
		Kind: domain.RoomKindAdmin,
		Participants: []domain.Participant{
			domain.NewParticipant(member.ID, member.DisplayName),
			domain.AdminParticipant(),
		},
	}

	return s.getOrCreate(ctx, room, &member.ID, domain.ActorRoleMember)
}

// getOrCreate returns the stored room with room.ID, creating it from room
// when it does not exist yet. Concurrent callers all get the same room.
func (s *roomRegistry) getOrCreate(ctx context.Context, room *domain.ChatRoom, actor *int64, actorRole string) (*domain.ChatRoom, error) {
	existing, err := s.roomRepo.GetByID(ctx, room.ID)
	if err == nil {
		s.log.Debug("Existing chat room returned", "room_id", room.ID)
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrRoomNotFound) {
		return nil, err
	}

	room.CreatedAt = s.timestamp()
	stored, created, err := s.roomRepo.SaveIfAbsent(ctx, room)
	if err != nil {
		s.log.Error("Failed to create chat room", "error", err, "room_id", room.ID)
		return nil, err
	}

	// a concurrent creator may have won; only the winner audits
	if created {
		s.log.Info("Chat room created", "room_id", stored.ID, "kind", stored.Kind)
		s.logCreated(ctx, stored, actor, actorRole)
	}
	return stored, nil
}

// timestamp is truncated to what the store keeps.
func (s *roomRegistry) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *roomRegistry) logCreated(ctx context.Context, room *domain.ChatRoom, actor *int64, actorRole string) {
	roomID := room.ID
	_ = s.audit.LogEvent(ctx, actor, actorRole, &roomID, domain.EventTypeRoomCreated, map[string]any{
		"kind":         room.Kind,
		"participants": room.MemberNames(),
	})
}

func (s *roomRegistry) FindByMember(ctx context.Context, memberID int64) ([]*domain.ChatRoom, error) {
	return s.roomRepo.ListByMember(ctx, memberID)
}

func (s *roomRegistry) Get(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	if !ValidRoomID(roomID) {
		return nil, fmt.Errorf("malformed room id: %w", apperrors.ErrInvalidRequest)
	}
	return s.roomRepo.GetByID(ctx, roomID)
}

func (s *roomRegistry) SearchByMemberName(ctx context.Context, text string) ([]*domain.ChatRoom, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("member name is empty: %w", apperrors.ErrInvalidRequest)
	}

	members, err := s.members.SearchByDisplayName(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}

	rooms := make([]*domain.ChatRoom, 0)
	for _, member := range members {
		found, err := s.roomRepo.ListByMember(ctx, member.ID)
		if err != nil {
			return nil, fmt.Errorf("list rooms of member %d: %w", member.ID, err)
		}
		rooms = append(rooms, found...)
	}

	rooms = lo.UniqBy(rooms, func(room *domain.ChatRoom) string { return room.ID })
	sort.SliceStable(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms, nil
}

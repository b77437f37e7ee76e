//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"marketplace_chat/internal/domain"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

type ChatRoomRepository interface {
	// SaveIfAbsent stores room unless a room with the same id already exists,
	// and returns whichever room is stored under that id afterwards. created
	// is true only for the call that inserted it.
	SaveIfAbsent(ctx context.Context, room *domain.ChatRoom) (stored *domain.ChatRoom, created bool, err error)
	GetByID(ctx context.Context, id string) (*domain.ChatRoom, error)
	ListByMember(ctx context.Context, memberID int64) ([]*domain.ChatRoom, error)
	// MaxGroupSerial returns the highest serial among stored group rooms, or 0.
	MaxGroupSerial(ctx context.Context) (int64, error)
	// UpdateLastReadAt moves the member's read cursor forward to at. A cursor
	// never moves backwards.
	UpdateLastReadAt(ctx context.Context, roomID string, memberID int64, at time.Time) error
}

type chatRoomRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatRoomRepository(db *pgxpool.Pool, log logger.Logger) ChatRoomRepository {
	return &chatRoomRepository{db: db, log: log}
}

func (r *chatRoomRepository) SaveIfAbsent(ctx context.Context, room *domain.ChatRoom) (*domain.ChatRoom, bool, error) {
	var created bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO chat_rooms (id, kind, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`, room.ID, string(room.Kind), room.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		created = true

		batch := &pgx.Batch{}
		for i, p := range room.Participants {
			batch.Queue(`
				INSERT INTO chat_participants (room_id, position, member_id, display_name, last_read_at)
				VALUES ($1, $2, $3, $4, $5)
			`, room.ID, i, p.MemberID, p.DisplayName, p.LastReadAt)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		r.log.Error("Failed to save chat room", "error", err, "room_id", room.ID)
		return nil, false, fmt.Errorf("save chat room: %w", err)
	}

	stored, err := r.GetByID(ctx, room.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *chatRoomRepository) GetByID(ctx context.Context, id string) (*domain.ChatRoom, error) {
	room := &domain.ChatRoom{}
	var kind string
	err := r.db.QueryRow(ctx, `
		SELECT id, kind, created_at
		FROM chat_rooms
		WHERE id = $1
	`, id).Scan(&room.ID, &kind, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		r.log.Error("Failed to get chat room", "error", err, "room_id", id)
		return nil, err
	}
	if room.Kind, err = storedKind(room.ID, kind); err != nil {
		r.log.Error("Stored chat room has a bad kind", "error", err, "room_id", id)
		return nil, err
	}

	participants, err := r.participants(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	room.Participants = participants[id]

	return room, nil
}

func (r *chatRoomRepository) ListByMember(ctx context.Context, memberID int64) ([]*domain.ChatRoom, error) {
	return r.listWhere(ctx, `
		SELECT r.id, r.kind, r.created_at
		FROM chat_rooms r
		WHERE EXISTS (
			SELECT 1 FROM chat_participants p
			WHERE p.room_id = r.id AND p.member_id = $1
		)
		ORDER BY r.created_at, r.id
	`, memberID)
}

func (r *chatRoomRepository) MaxGroupSerial(ctx context.Context) (int64, error) {
	var serial int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(id FROM '^group_room_([0-9]+)$')::BIGINT), 0)
		FROM chat_rooms
		WHERE kind = $1
	`, string(domain.RoomKindGroup)).Scan(&serial)
	if err != nil {
		r.log.Error("Failed to read max group serial", "error", err)
		return 0, err
	}
	return serial, nil
}

func (r *chatRoomRepository) UpdateLastReadAt(ctx context.Context, roomID string, memberID int64, at time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE chat_participants
		SET last_read_at = GREATEST(last_read_at, $3)
		WHERE room_id = $1 AND member_id = $2
	`, roomID, memberID, at)
	if err != nil {
		r.log.Error("Failed to update last read", "error", err, "room_id", roomID, "member_id", memberID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccessDenied
	}
	return nil
}

func (r *chatRoomRepository) listWhere(ctx context.Context, query string, arg any) ([]*domain.ChatRoom, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		r.log.Error("Failed to list chat rooms", "error", err)
		return nil, err
	}
	defer rows.Close()

	rooms := make([]*domain.ChatRoom, 0)
	var ids []string
	for rows.Next() {
		room := &domain.ChatRoom{}
		var kind string
		if err := rows.Scan(&room.ID, &kind, &room.CreatedAt); err != nil {
			r.log.Error("Failed to scan chat room", "error", err)
			return nil, err
		}
		if room.Kind, err = storedKind(room.ID, kind); err != nil {
			r.log.Error("Stored chat room has a bad kind", "error", err, "room_id", room.ID)
			return nil, err
		}
		rooms = append(rooms, room)
		ids = append(ids, room.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	participants, err := r.participants(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		room.Participants = participants[room.ID]
	}

	return rooms, nil
}

// storedKind checks a kind column against the kind the id was derived for.
func storedKind(id, kind string) (domain.RoomKind, error) {
	k := domain.RoomKind(kind)
	if !k.Valid() {
		return "", fmt.Errorf("room %q: unknown kind %q", id, kind)
	}
	if derived, ok := domain.KindOfRoomID(id); ok && derived != k {
		return "", fmt.Errorf("room %q: kind %s does not match id", id, k)
	}
	return k, nil
}

func (r *chatRoomRepository) participants(ctx context.Context, roomIDs []string) (map[string][]domain.Participant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT room_id, member_id, display_name, last_read_at
		FROM chat_participants
		WHERE room_id = ANY($1)
		ORDER BY room_id, position
	`, roomIDs)
	if err != nil {
		r.log.Error("Failed to get participants", "error", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Participant, len(roomIDs))
	for rows.Next() {
		var roomID string
		var p domain.Participant
		if err := rows.Scan(&roomID, &p.MemberID, &p.DisplayName, &p.LastReadAt); err != nil {
			r.log.Error("Failed to scan participant", "error", err)
			return nil, err
		}
		out[roomID] = append(out[roomID], p)
	}

	return out, rows.Err()
}

//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"marketplace_chat/internal/domain"
	"marketplace_chat/pkg/logger"
)

type ChatMessageRepository interface {
	// Create persists message and fills in its ID.
	Create(ctx context.Context, message *domain.ChatMessage) error
	// ListByRoom returns the room's messages in persisted order.
	ListByRoom(ctx context.Context, roomID string) ([]*domain.ChatMessage, error)
	// GetLatest returns nil, nil for a room without messages.
	GetLatest(ctx context.Context, roomID string) (*domain.ChatMessage, error)
	// CountSince counts messages sent strictly after since; a nil since counts all.
	CountSince(ctx context.Context, roomID string, since *time.Time) (int64, error)
}

type chatMessageRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatMessageRepository(db *pgxpool.Pool, log logger.Logger) ChatMessageRepository {
	return &chatMessageRepository{db: db, log: log}
}

const messageColumns = `id, room_id, sender_id, receiver_id, sender_name, body, kind, sent_at`

func (r *chatMessageRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (room_id, sender_id, receiver_id, sender_name, body, kind, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		message.RoomID, message.SenderID, message.ReceiverID, message.SenderDisplayName,
		message.Body, message.Kind, message.SentAt,
	).Scan(&message.ID)
	if err != nil {
		r.log.Error("Failed to create message", "error", err, "room_id", message.RoomID)
		return err
	}

	return nil
}

func (r *chatMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.ChatMessage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY id ASC
	`, roomID)
	if err != nil {
		r.log.Error("Failed to get messages", "error", err, "room_id", roomID)
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.ChatMessage, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

func (r *chatMessageRepository) GetLatest(ctx context.Context, roomID string) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, roomID)

	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to get latest message", "error", err, "room_id", roomID)
		return nil, err
	}

	return message, nil
}

func (r *chatMessageRepository) CountSince(ctx context.Context, roomID string, since *time.Time) (int64, error) {
	var count int64
	var err error
	if since == nil {
		err = r.db.QueryRow(ctx, `SELECT count(*) FROM chat_messages WHERE room_id = $1`, roomID).Scan(&count)
	} else {
		err = r.db.QueryRow(ctx, `
			SELECT count(*) FROM chat_messages
			WHERE room_id = $1 AND sent_at > $2
		`, roomID, *since).Scan(&count)
	}
	if err != nil {
		r.log.Error("Failed to count messages", "error", err, "room_id", roomID)
		return 0, err
	}

	return count, nil
}

func scanMessage(row pgx.Row) (*domain.ChatMessage, error) {
	message := &domain.ChatMessage{}
	err := row.Scan(
		&message.ID, &message.RoomID, &message.SenderID, &message.ReceiverID,
		&message.SenderDisplayName, &message.Body, &message.Kind, &message.SentAt,
	)
	if err != nil {
		return nil, err
	}
	return message, nil
}

package domain

import (
	"time"
)

// ChatMessage is immutable once persisted.
type ChatMessage struct {
	ID                int64     `json:"id"`
	RoomID            string    `json:"room_id"`
	SenderID          *int64    `json:"sender_id"`
	ReceiverID        *int64    `json:"receiver_id,omitempty"`
	SenderDisplayName string    `json:"sender_name"`
	Body              string    `json:"message"`
	Kind              string    `json:"type"`
	SentAt            time.Time `json:"send_at"`
}

const (
	MessageKindUser  = "USER"
	MessageKindAdmin = "ADMIN"
)

// AdminDisplayName is the name shown for the administrator pseudo-participant
// and on every admin-authored message.
const AdminDisplayName = "관리자"

func (m *ChatMessage) IsAdmin() bool {
	return m.Kind == MessageKindAdmin
}

// RoomSummary is one row of a member's room list.
type RoomSummary struct {
	Room        *ChatRoom    `json:"room"`
	LastMessage *ChatMessage `json:"last_message,omitempty"`
	UnreadCount int64        `json:"unread_count"`
}

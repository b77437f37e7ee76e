package domain

import (
	"time"
)

type AuditLog struct {
	ID            int64          `json:"id"`
	EventTime     time.Time      `json:"event_time"`
	ActorMemberID *int64         `json:"actor_member_id,omitempty"`
	ActorRole     string         `json:"actor_role"`
	RoomID        *string        `json:"room_id,omitempty"`
	EventType     string         `json:"event_type"`
	Payload       map[string]any `json:"payload"`
}

const (
	ActorRoleMember = "member"
	ActorRoleAdmin  = "admin"
	ActorRoleSystem = "system"
)

const (
	EventTypeRoomCreated      = "CHAT_ROOM_CREATED"
	EventTypeAdminMessageSent = "CHAT_ADMIN_MESSAGE_SENT"
)

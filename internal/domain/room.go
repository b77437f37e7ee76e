package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type RoomKind string

const (
	RoomKindPersonal RoomKind = "PERSONAL"
	RoomKindGroup    RoomKind = "GROUP"
	RoomKindAdmin    RoomKind = "ADMIN"
)

const (
	personalRoomPrefix = "personal_"
	groupRoomPrefix    = "group_room_"
	adminRoomPrefix    = "admin_"
)

func (k RoomKind) Valid() bool {
	switch k {
	case RoomKindPersonal, RoomKindGroup, RoomKindAdmin:
		return true
	}
	return false
}

// PersonalRoomID derives the id of the one-to-one room between a buyer and a
// store owner from their display names at creation time.
func PersonalRoomID(buyerName, sellerName string) string {
	return personalRoomPrefix + buyerName + "_" + sellerName
}

// AdminRoomID derives the id of a member's support room.
func AdminRoomID(memberName string) string {
	return adminRoomPrefix + memberName
}

// GroupRoomID formats a freshly allocated serial.
func GroupRoomID(serial int64) string {
	return fmt.Sprintf("%s%d", groupRoomPrefix, serial)
}

// GroupSerial parses the serial out of a group room id.
func GroupSerial(id string) (int64, bool) {
	if kind, ok := KindOfRoomID(id); !ok || kind != RoomKindGroup {
		return 0, false
	}
	serial, err := strconv.ParseInt(strings.TrimPrefix(id, groupRoomPrefix), 10, 64)
	if err != nil || serial <= 0 {
		return 0, false
	}
	return serial, true
}

// KindOfRoomID recovers the kind from an id produced by the functions above.
func KindOfRoomID(id string) (RoomKind, bool) {
	switch {
	case strings.HasPrefix(id, personalRoomPrefix):
		return RoomKindPersonal, true
	case strings.HasPrefix(id, groupRoomPrefix):
		return RoomKindGroup, true
	case strings.HasPrefix(id, adminRoomPrefix):
		return RoomKindAdmin, true
	}
	return "", false
}

// ChatRoom membership is fixed at creation; only read cursors change later.
type ChatRoom struct {
	ID           string        `json:"chatroom_id"`
	Kind         RoomKind      `json:"kind"`
	Participants []Participant `json:"users"`
	CreatedAt    time.Time     `json:"created_at"`
}

type Participant struct {
	MemberID    *int64     `json:"member_id"`
	DisplayName string     `json:"member_name"`
	LastReadAt  *time.Time `json:"last_read_at,omitempty"`
}

func NewParticipant(memberID int64, displayName string) Participant {
	return Participant{MemberID: &memberID, DisplayName: displayName}
}

// AdminParticipant is the reserved administrator pseudo-member. It has no id.
func AdminParticipant() Participant {
	return Participant{DisplayName: AdminDisplayName}
}

// Participant returns the member's entry, or nil when memberID is not in the room.
func (r *ChatRoom) Participant(memberID int64) *Participant {
	for i := range r.Participants {
		p := &r.Participants[i]
		if p.MemberID != nil && *p.MemberID == memberID {
			return p
		}
	}
	return nil
}

func (r *ChatRoom) HasMember(memberID int64) bool {
	return r.Participant(memberID) != nil
}

func (r *ChatRoom) MemberNames() []string {
	names := make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		names = append(names, p.DisplayName)
	}
	return names
}

// Package hub tracks live chat connections per room and per member and fans
// messages out to them.
package hub

import (
	"sync"

	"marketplace_chat/pkg/logger"
)

// Connection is one live duplex connection as seen by the chat core. The
// transport owns the socket; the hub only sends.
type Connection interface {
	ID() string
	// Send queues payloads for delivery in order, as one unit. It must not
	// block on the network.
	Send(payloads ...[]byte) error
	IsOpen() bool
	Close(reason string) error
}

// Hub is safe for concurrent use. Sends always happen outside its lock.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[Connection]struct{}
	connRoom map[Connection]string
	members  map[int64]Connection
	// boundTo is the reverse of members.
	boundTo map[Connection]map[int64]struct{}
	log     logger.Logger
}

func New(log logger.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[Connection]struct{}),
		connRoom: make(map[Connection]string),
		members:  make(map[int64]Connection),
		boundTo:  make(map[Connection]map[int64]struct{}),
		log:      log,
	}
}

// Register adds conn to roomID's set. A connection belongs to one room; a
// second Register moves it.
func (h *Hub) Register(conn Connection, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.connRoom[conn]; ok {
		h.removeLocked(conn, prev)
	}

	set, ok := h.rooms[roomID]
	if !ok {
		set = make(map[Connection]struct{})
		h.rooms[roomID] = set
	}
	set[conn] = struct{}{}
	h.connRoom[conn] = roomID

	h.log.Debug("Connection registered", "conn_id", conn.ID(), "room_id", roomID, "room_size", len(set))
}

// Bind records conn as memberID's most recent connection.
func (h *Hub) Bind(memberID int64, conn Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.members[memberID]; ok && prev != conn {
		h.unbindLocked(prev, memberID)
	}
	h.members[memberID] = conn

	ids, ok := h.boundTo[conn]
	if !ok {
		ids = make(map[int64]struct{})
		h.boundTo[conn] = ids
	}
	ids[memberID] = struct{}{}
}

func (h *Hub) unbindLocked(conn Connection, memberID int64) {
	ids := h.boundTo[conn]
	delete(ids, memberID)
	if len(ids) == 0 {
		delete(h.boundTo, conn)
	}
}

// Unregister forgets conn. An emptied room entry is evicted and a member
// entry pointing at conn is cleared.
func (h *Hub) Unregister(conn Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if roomID, ok := h.connRoom[conn]; ok {
		h.removeLocked(conn, roomID)
		h.log.Debug("Connection unregistered", "conn_id", conn.ID(), "room_id", roomID)
	}
	for memberID := range h.boundTo[conn] {
		delete(h.members, memberID)
	}
	delete(h.boundTo, conn)
}

func (h *Hub) removeLocked(conn Connection, roomID string) {
	delete(h.connRoom, conn)
	set, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.rooms, roomID)
	}
}

// Broadcast sends payload to every connection registered under roomID at
// call time and returns how many accepted it. Closed connections are
// skipped and a failed send never stops delivery to the rest.
func (h *Hub) Broadcast(roomID string, payload []byte) int {
	conns := h.snapshot(roomID)

	delivered := 0
	for _, conn := range conns {
		if !conn.IsOpen() {
			continue
		}
		if err := conn.Send(payload); err != nil {
			h.log.Warn("Broadcast send failed", "error", err, "conn_id", conn.ID(), "room_id", roomID)
			continue
		}
		delivered++
	}

	return delivered
}

// Notify sends payload to memberID's last known connection if it is still
// open. It reports whether anything was sent.
func (h *Hub) Notify(memberID int64, payload []byte) bool {
	h.mu.RLock()
	conn, ok := h.members[memberID]
	h.mu.RUnlock()

	if !ok || !conn.IsOpen() {
		return false
	}
	if err := conn.Send(payload); err != nil {
		h.log.Warn("Notify send failed", "error", err, "conn_id", conn.ID(), "member_id", memberID)
		return false
	}
	return true
}

func (h *Hub) snapshot(roomID string) []Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.rooms[roomID]
	conns := make([]Connection, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	return conns
}

func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[roomID])
}

// Rooms is the number of rooms with at least one live connection.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms)
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connRoom)
}

// CloseAll closes every registered connection. Used on shutdown; the
// transport's close callbacks unregister them.
func (h *Hub) CloseAll(reason string) int {
	h.mu.RLock()
	conns := make([]Connection, 0, len(h.connRoom))
	for conn := range h.connRoom {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Close(reason); err != nil {
			h.log.Debug("Close on shutdown failed", "error", err, "conn_id", conn.ID())
		}
	}
	return len(conns)
}

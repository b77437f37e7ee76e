package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"marketplace_chat/internal/domain"
	"marketplace_chat/internal/hub"
	"marketplace_chat/internal/repository"
	"marketplace_chat/pkg/logger"
)

const (
	minaID  int64 = 42
	dojinID int64 = 7
	soraID  int64 = 9
	haruID  int64 = 11

	dojinStore = "dojin-shop"
)

type fixture struct {
	repos    *repository.Repositories
	audit    *repository.MemoryAuditRepository
	hub      *hub.Hub
	dispatch *hub.Dispatcher
	codec    IdentityCodec
	rooms    RoomRegistry
	messages MessageService
	protocol *ProtocolHandler
}

func newFixture(t *testing.T, opts ProtocolOptions) *fixture {
	t.Helper()
	log := logger.Nop()

	repos, members := repository.NewMemoryRepositories(nil, log)
	members.AddMember(domain.Member{ID: minaID, DisplayName: "Mina", Role: domain.MemberRoleBuyer})
	members.AddMember(domain.Member{ID: dojinID, DisplayName: "Dojin", Role: domain.MemberRoleSeller})
	members.AddMember(domain.Member{ID: soraID, DisplayName: "Sora", Role: domain.MemberRoleBuyer})
	members.AddMember(domain.Member{ID: haruID, DisplayName: "Haru", Role: domain.MemberRoleBuyer})
	members.AddStore(dojinStore, dojinID)

	h := hub.New(log)
	d := hub.NewDispatcher(4, 16, log)
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	audit := NewAuditService(repos.Audit, log)
	codec := NewIdentityCodec()
	rooms := NewRoomRegistry(repos.Rooms, repos.Members, repos.Serials, audit, log)
	messages := NewMessageService(repos.Messages, repos.Rooms, repos.Members, audit, log)

	return &fixture{
		repos:    repos,
		audit:    repos.Audit.(*repository.MemoryAuditRepository),
		hub:      h,
		dispatch: d,
		codec:    codec,
		rooms:    rooms,
		messages: messages,
		protocol: NewProtocolHandler(codec, rooms, messages, h, d, opts, log),
	}
}

// freezeClock pins both services' clocks to at.
func (f *fixture) freezeClock(at time.Time) {
	now := func() time.Time { return at }
	f.messages.(*messageService).now = now
	f.rooms.(*roomRegistry).now = now
}

// flush waits until every job queued for roomID so far has run.
func (f *fixture) flush(t *testing.T, roomID string) {
	t.Helper()
	require.NoError(t, f.dispatch.Do(context.Background(), roomID, func(context.Context) error { return nil }))
}

func (f *fixture) personalRoom(t *testing.T) *domain.ChatRoom {
	t.Helper()
	room, err := f.rooms.GetOrCreatePersonal(context.Background(), minaID, dojinStore)
	require.NoError(t, err)
	return room
}

type testConn struct {
	id string

	mu     sync.Mutex
	open   bool
	fail   bool
	reason string
	frames [][]byte
}

func newTestConn(id string) *testConn {
	return &testConn{id: id, open: true}
}

func (c *testConn) ID() string { return c.id }

func (c *testConn) Send(payloads ...[]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return errors.New("closed")
	}
	if c.fail {
		return errors.New("send queue full")
	}
	c.frames = append(c.frames, payloads...)
	return nil
}

func (c *testConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *testConn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.reason = reason
	return nil
}

type decodedFrame struct {
	Type         string             `json:"type"`
	Message      domain.ChatMessage `json:"message"`
	Notification string             `json:"notification"`
	Code         string             `json:"code"`
}

func (c *testConn) decoded(t *testing.T) []decodedFrame {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]decodedFrame, 0, len(c.frames))
	for _, raw := range c.frames {
		var f decodedFrame
		require.NoError(t, json.Unmarshal(raw, &f))
		out = append(out, f)
	}
	return out
}

func (c *testConn) bodies(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, f := range c.decoded(t) {
		if f.Type == FrameTypeMessage {
			out = append(out, f.Message.Body)
		}
	}
	return out
}

func userFrame(senderID int64, body string) []byte {
	payload, _ := json.Marshal(map[string]any{"sender_id": senderID, "body": body})
	return payload
}

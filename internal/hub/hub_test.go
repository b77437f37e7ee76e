package hub

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"marketplace_chat/pkg/logger"
)

type fakeConn struct {
	id string

	mu      sync.Mutex
	open    bool
	failing bool
	frames  [][]byte
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, open: true}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(payloads ...[]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("buffer full")
	}
	c.frames = append(c.frames, payloads...)
	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *fakeConn) Close(string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

func (c *fakeConn) received() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		out = append(out, string(f))
	}
	return out
}

func TestHub_BroadcastSkipsClosedAndFailing(t *testing.T) {
	h := New(logger.Nop())
	a, b, closed, failing := newFakeConn("a"), newFakeConn("b"), newFakeConn("c"), newFakeConn("d")
	closed.open = false
	failing.failing = true

	for _, c := range []*fakeConn{a, b, closed, failing} {
		h.Register(c, "room")
	}
	h.Register(newFakeConn("other"), "elsewhere")

	require.Equal(t, 2, h.Broadcast("room", []byte("hi")))
	require.Equal(t, []string{"hi"}, a.received())
	require.Equal(t, []string{"hi"}, b.received())
	require.Empty(t, closed.received())
	require.Zero(t, h.Broadcast("nobody-here", []byte("hi")))
}

func TestHub_UnregisterEvictsEmptyRoom(t *testing.T) {
	h := New(logger.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")
	h.Register(a, "room")
	h.Register(b, "room")
	require.Equal(t, 2, h.RoomSize("room"))

	h.Unregister(a)
	require.Equal(t, 1, h.RoomSize("room"))

	h.Unregister(b)
	h.Unregister(b)
	require.Zero(t, h.RoomSize("room"))
	require.Zero(t, h.Rooms())
	require.Zero(t, h.Connections())
}

func TestHub_RegisterMovesConnection(t *testing.T) {
	h := New(logger.Nop())
	a := newFakeConn("a")
	h.Register(a, "one")
	h.Register(a, "two")

	require.Zero(t, h.RoomSize("one"))
	require.Equal(t, 1, h.RoomSize("two"))
}

func TestHub_NotifyUsesLatestBinding(t *testing.T) {
	h := New(logger.Nop())
	first, second := newFakeConn("first"), newFakeConn("second")
	h.Register(first, "room")
	h.Register(second, "room")

	require.False(t, h.Notify(42, []byte("x")))

	h.Bind(42, first)
	h.Bind(42, second)
	require.True(t, h.Notify(42, []byte("ping")))
	require.Empty(t, first.received())
	require.Equal(t, []string{"ping"}, second.received())

	// unregistering a stale connection keeps the newer binding
	h.Unregister(first)
	require.True(t, h.Notify(42, []byte("again")))

	h.Unregister(second)
	require.False(t, h.Notify(42, []byte("gone")))
}

func TestHub_UnregisterClearsEveryBinding(t *testing.T) {
	h := New(logger.Nop())
	shared, other := newFakeConn("shared"), newFakeConn("other")
	h.Register(shared, "room")
	h.Register(other, "room")

	h.Bind(42, shared)
	h.Bind(7, shared)
	h.Bind(9, shared)
	h.Bind(9, other)

	h.Unregister(shared)
	require.False(t, h.Notify(42, []byte("x")))
	require.False(t, h.Notify(7, []byte("x")))
	require.True(t, h.Notify(9, []byte("still here")))
	require.NotContains(t, h.boundTo, Connection(shared))

	h.Unregister(other)
	require.Empty(t, h.members)
	require.Empty(t, h.boundTo)
}

func TestHub_NotifyClosedConnection(t *testing.T) {
	h := New(logger.Nop())
	c := newFakeConn("a")
	h.Bind(7, c)
	require.NoError(t, c.Close("bye"))

	require.False(t, h.Notify(7, []byte("x")))
}

func TestHub_CloseAll(t *testing.T) {
	h := New(logger.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")
	h.Register(a, "one")
	h.Register(b, "two")

	require.Equal(t, 2, h.CloseAll("shutdown"))
	require.False(t, a.IsOpen())
	require.False(t, b.IsOpen())
}

func TestHub_ConcurrentRegisterBroadcast(t *testing.T) {
	h := New(logger.Nop())
	var wg sync.WaitGroup
	conns := make([]*fakeConn, 32)
	for i := range conns {
		conns[i] = newFakeConn("c")
	}

	for i := range conns {
		wg.Add(2)
		go func(c *fakeConn) {
			defer wg.Done()
			h.Register(c, "room")
		}(conns[i])
		go func() {
			defer wg.Done()
			h.Broadcast("room", []byte("m"))
		}()
	}
	wg.Wait()

	require.Equal(t, len(conns), h.RoomSize("room"))
}

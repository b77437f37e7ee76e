package handler

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"marketplace_chat/internal/config"
	"marketplace_chat/internal/service"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

// wsConnection adapts a gorilla socket to hub.Connection. Writes go through
// a buffered queue drained by writePump. A full queue fails the send and
// closes the connection instead of blocking the caller.
type wsConnection struct {
	id   string
	ws   *websocket.Conn
	send chan [][]byte
	done chan struct{}

	mu     sync.RWMutex
	closed bool
	reason string
}

func newWSConnection(ws *websocket.Conn, buffer int) *wsConnection {
	return &wsConnection{
		id:   uuid.NewString(),
		ws:   ws,
		send: make(chan [][]byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *wsConnection) ID() string { return c.id }

const reasonQueueFull = "send queue full"

func (c *wsConnection) Send(payloads ...[]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return apperrors.ErrConnClosed
	}
	select {
	case c.send <- payloads:
		return nil
	default:
		c.closeLocked(reasonQueueFull)
		return apperrors.ErrSendFailed
	}
}

func (c *wsConnection) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

// Close asks the writer to send a close frame and drop the socket. Safe to
// call more than once.
func (c *wsConnection) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closeLocked(reason)
	}
	return nil
}

func (c *wsConnection) closeLocked(reason string) {
	c.closed = true
	c.reason = reason
	close(c.done)
}

func (c *wsConnection) closeReason() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reason
}

type WebSocketHandler struct {
	protocol *service.ProtocolHandler
	upgrader websocket.Upgrader
	cfg      config.ChatConfig
	log      logger.Logger
}

func NewWebSocketHandler(protocol *service.ProtocolHandler, cfg *config.Config, log logger.Logger) *WebSocketHandler {
	origins := cfg.Server.AllowedOrigins
	return &WebSocketHandler{
		protocol: protocol,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(origins) == 0 {
					return true
				}
				return lo.Contains(origins, "*") || lo.Contains(origins, origin)
			},
		},
		cfg: cfg.Chat,
		log: log,
	}
}

// HandleChat serves GET /ws/chat/:token. The optional member_id query
// parameter makes this connection the member's notification target.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	token := c.Param("token")

	var memberID *int64
	if raw := c.Query("member_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member_id"})
			return
		}
		memberID = &id
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := newWSConnection(ws, h.cfg.SendBuffer)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(conn)
	}()

	ctx := c.Request.Context()
	if err := h.protocol.OnOpen(ctx, conn, token, memberID); err != nil {
		// OnOpen already closed conn; let the writer send the close frame
		<-writerDone
		return
	}

	h.readPump(ctx, conn)
	_ = conn.Close("")
	<-writerDone
}

func (h *WebSocketHandler) readPump(ctx context.Context, conn *wsConnection) {
	ws := conn.ws
	ws.SetReadLimit(h.cfg.MaxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) && conn.IsOpen() {
				h.protocol.OnError(conn, err)
			} else {
				h.protocol.OnClose(conn)
			}
			return
		}

		if err := h.protocol.OnMessage(ctx, conn, payload); err != nil {
			h.log.Warn("Failed to queue chat message", "error", err, "conn_id", conn.ID())
			h.protocol.OnError(conn, err)
			return
		}
	}
}

func (h *WebSocketHandler) writePump(conn *wsConnection) {
	ws := conn.ws
	ticker := time.NewTicker(h.cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case batch := <-conn.send:
			for _, payload := range batch {
				_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
				if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
					h.log.Debug("WebSocket write failed", "error", err, "conn_id", conn.ID())
					_ = conn.Close("write failed")
					return
				}
			}

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close("ping failed")
				return
			}

		case <-conn.done:
			h.flush(conn)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, conn.closeReason())
			_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteWait))
			return
		}
	}
}

// flush writes whatever was queued before the connection was closed.
func (h *WebSocketHandler) flush(conn *wsConnection) {
	for {
		select {
		case batch := <-conn.send:
			for _, payload := range batch {
				_ = conn.ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
				if err := conn.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		default:
			return
		}
	}
}

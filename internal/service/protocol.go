package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"marketplace_chat/internal/domain"
	"marketplace_chat/internal/hub"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

type sessionState int32

const (
	stateConnecting sessionState = iota
	stateOpen
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateConnecting:
		return "CONNECTING"
	case stateOpen:
		return "OPEN"
	default:
		return "CLOSED"
	}
}

type session struct {
	roomID string
	state  atomic.Int32
}

func (s *session) load() sessionState {
	return sessionState(s.state.Load())
}

func (s *session) transition(from, to sessionState) bool {
	return s.state.CompareAndSwap(int32(from), int32(to))
}

// inboundFrame is what a client sends over the socket.
type inboundFrame struct {
	SenderID *int64 `json:"sender_id" validate:"required,gt=0"`
	Body     string `json:"body"`
}

type messageFrame struct {
	Type    string             `json:"type"`
	Message domain.ChatMessage `json:"message"`
}

type notificationFrame struct {
	Type         string    `json:"type"`
	MemberID     int64     `json:"member_id"`
	Notification string    `json:"notification"`
	SentAt       time.Time `json:"send_at"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

const (
	FrameTypeMessage      = "message"
	FrameTypeNotification = "notification"
	FrameTypeError        = "error"
)

// ProtocolHandler drives one chat connection from open to close. The
// transport calls OnOpen once, then OnMessage per inbound frame, then OnClose
// or OnError. Work for a room runs on that room's dispatcher shard, so a
// history replay and the broadcasts around it never interleave.
type ProtocolHandler struct {
	codec       IdentityCodec
	rooms       RoomRegistry
	messages    MessageService
	hub         *hub.Hub
	dispatcher  *hub.Dispatcher
	validate    *validator.Validate
	errorFrames bool
	log         logger.Logger

	sessions sync.Map // hub.Connection -> *session
}

type ProtocolOptions struct {
	// ErrorFrames sends an error frame back to the sender when a message is
	// rejected. Otherwise rejected messages are only logged.
	ErrorFrames bool
}

func NewProtocolHandler(
	codec IdentityCodec,
	rooms RoomRegistry,
	messages MessageService,
	h *hub.Hub,
	dispatcher *hub.Dispatcher,
	opts ProtocolOptions,
	log logger.Logger,
) *ProtocolHandler {
	return &ProtocolHandler{
		codec:       codec,
		rooms:       rooms,
		messages:    messages,
		hub:         h,
		dispatcher:  dispatcher,
		validate:    validator.New(),
		errorFrames: opts.ErrorFrames,
		log:         log,
	}
}

// OnOpen binds conn to the room named by roomToken and replays the room's
// history to it. memberID, when known, becomes the member's notification
// target. An unknown room closes conn and returns the lookup error.
func (p *ProtocolHandler) OnOpen(ctx context.Context, conn hub.Connection, roomToken string, memberID *int64) error {
	roomID := p.codec.Decode(roomToken)
	log := p.log.With("conn_id", conn.ID(), "room_id", roomID)

	sess := &session{roomID: roomID}
	if _, loaded := p.sessions.LoadOrStore(conn, sess); loaded {
		return fmt.Errorf("connection %s already opened: %w", conn.ID(), apperrors.ErrInvalidRequest)
	}

	room, err := p.rooms.Get(ctx, roomID)
	if err != nil {
		log.Warn("Rejecting chat connection", "error", err)
		p.closeSession(conn, sess)
		_ = conn.Close("chat room not found")
		return err
	}

	err = p.dispatcher.Do(ctx, room.ID, func(ctx context.Context) error {
		if sess.load() == stateClosed {
			return nil
		}

		p.hub.Register(conn, room.ID)
		if memberID != nil {
			p.hub.Bind(*memberID, conn)
		}

		history, err := p.messages.History(ctx, room.ID)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		frames := make([][]byte, 0, len(history))
		for _, m := range history {
			frame, err := p.messageFrame(m)
			if err != nil {
				return err
			}
			frames = append(frames, frame)
		}
		if len(frames) > 0 {
			if err := conn.Send(frames...); err != nil {
				return fmt.Errorf("replay history: %w", err)
			}
		}

		if !sess.transition(stateConnecting, stateOpen) {
			// closed while replaying
			p.hub.Unregister(conn)
			return nil
		}

		log.Info("Chat connection opened", "replayed", len(frames))
		return nil
	})
	if err != nil {
		log.Error("Failed to open chat connection", "error", err)
		p.closeSession(conn, sess)
		_ = conn.Close("failed to open chat room")
		return err
	}

	return nil
}

// OnMessage accepts one inbound frame. Frames on a connection that is not
// open and frames that do not parse are dropped.
func (p *ProtocolHandler) OnMessage(ctx context.Context, conn hub.Connection, payload []byte) error {
	sess, ok := p.session(conn)
	if !ok {
		p.log.Debug("Dropping frame on unknown connection", "conn_id", conn.ID())
		return nil
	}
	if state := sess.load(); state != stateOpen {
		p.log.Debug("Dropping frame on connection that is not open", "conn_id", conn.ID(), "state", state.String())
		return nil
	}

	var frame inboundFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		p.log.Warn("Dropping unparsable chat frame", "error", err, "conn_id", conn.ID())
		p.reject(conn, fmt.Errorf("malformed frame: %w", apperrors.ErrInvalidRequest))
		return nil
	}
	if err := p.validate.Struct(frame); err != nil {
		p.log.Warn("Dropping invalid chat frame", "error", err, "conn_id", conn.ID())
		p.reject(conn, fmt.Errorf("invalid frame: %w", apperrors.ErrInvalidRequest))
		return nil
	}

	roomID := sess.roomID
	senderID := *frame.SenderID
	return p.dispatcher.Submit(ctx, roomID, func(ctx context.Context) error {
		message, err := p.messages.Accept(ctx, roomID, &senderID, frame.Body)
		if err != nil {
			// client mistakes are routine; anything else means the store is in trouble
			logRejected := p.log.Error
			if apperrors.IsDomain(err) {
				logRejected = p.log.Debug
			}
			logRejected("Chat message rejected", "error", err, "conn_id", conn.ID(), "room_id", roomID, "sender_id", senderID)
			p.reject(conn, err)
			return nil
		}

		if _, err := p.broadcast(message); err != nil {
			return err
		}
		p.hub.Bind(senderID, conn)
		return nil
	})
}

// OnClose is idempotent.
func (p *ProtocolHandler) OnClose(conn hub.Connection) {
	sess, ok := p.session(conn)
	if !ok {
		p.hub.Unregister(conn)
		return
	}
	p.closeSession(conn, sess)
	p.log.Info("Chat connection closed", "conn_id", conn.ID(), "room_id", sess.roomID)
}

func (p *ProtocolHandler) OnError(conn hub.Connection, cause error) {
	p.log.Warn("Chat connection error", "error", cause, "conn_id", conn.ID())
	p.OnClose(conn)
}

func (p *ProtocolHandler) closeSession(conn hub.Connection, sess *session) {
	sess.state.Store(int32(stateClosed))
	p.sessions.Delete(conn)
	p.hub.Unregister(conn)
}

func (p *ProtocolHandler) session(conn hub.Connection) (*session, bool) {
	v, ok := p.sessions.Load(conn)
	if !ok {
		return nil, false
	}
	return v.(*session), true
}

// AdminPush stores an administrator message for receiverID in roomID and
// broadcasts it to the room's open connections.
func (p *ProtocolHandler) AdminPush(ctx context.Context, roomID string, receiverID int64, body string) (*domain.ChatMessage, error) {
	if !ValidRoomID(roomID) {
		return nil, fmt.Errorf("malformed room id: %w", apperrors.ErrInvalidRequest)
	}

	var message *domain.ChatMessage
	err := p.dispatcher.Do(ctx, roomID, func(ctx context.Context) error {
		m, err := p.messages.AcceptAdmin(ctx, roomID, receiverID, body)
		if err != nil {
			return err
		}
		message = m

		delivered, err := p.broadcast(m)
		if err != nil {
			return err
		}
		p.log.Info("Admin message pushed", "room_id", roomID, "receiver_id", receiverID, "delivered", delivered)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// NotifyMember pushes a notification to the member's most recent connection.
func (p *ProtocolHandler) NotifyMember(memberID int64, text string) bool {
	payload, err := json.Marshal(notificationFrame{
		Type:         FrameTypeNotification,
		MemberID:     memberID,
		Notification: text,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		p.log.Error("Failed to encode notification", "error", err)
		return false
	}
	return p.hub.Notify(memberID, payload)
}

func (p *ProtocolHandler) broadcast(message *domain.ChatMessage) (int, error) {
	frame, err := p.messageFrame(message)
	if err != nil {
		return 0, err
	}
	return p.hub.Broadcast(message.RoomID, frame), nil
}

func (p *ProtocolHandler) messageFrame(message *domain.ChatMessage) ([]byte, error) {
	out := *message
	out.RoomID = p.codec.Encode(message.RoomID)
	payload, err := json.Marshal(messageFrame{Type: FrameTypeMessage, Message: out})
	if err != nil {
		return nil, fmt.Errorf("encode message frame: %w", err)
	}
	return payload, nil
}

func (p *ProtocolHandler) reject(conn hub.Connection, cause error) {
	if !p.errorFrames || !conn.IsOpen() {
		return
	}
	payload, err := json.Marshal(errorFrame{
		Type:  FrameTypeError,
		Error: cause.Error(),
		Code:  errorCode(cause),
	})
	if err != nil {
		return
	}
	if err := conn.Send(payload); err != nil {
		p.log.Debug("Failed to send error frame", "error", err, "conn_id", conn.ID())
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, apperrors.ErrMemberNotFound):
		return "MEMBER_NOT_FOUND"
	case errors.Is(err, apperrors.ErrAccessDenied):
		return "ACCESS_DENIED"
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return "INVALID_REQUEST"
	default:
		return "SEND_FAILED"
	}
}

// Stats reports live rooms and connections for health checks.
func (p *ProtocolHandler) Stats() (rooms, connections int) {
	return p.hub.Rooms(), p.hub.Connections()
}

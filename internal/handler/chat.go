package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"marketplace_chat/internal/domain"
	"marketplace_chat/internal/repository"
	"marketplace_chat/internal/service"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/logger"
)

// ChatHandler is the REST side of chat. Room ids cross this boundary only as
// encoded tokens; errors are left on the context for the ErrorHandler
// middleware to render.
type ChatHandler struct {
	rooms    service.RoomRegistry
	messages service.MessageService
	protocol *service.ProtocolHandler
	codec    service.IdentityCodec
	members  repository.MemberDirectory
	log      logger.Logger
}

func NewChatHandler(services *service.Services, members repository.MemberDirectory, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		rooms:    services.Rooms,
		messages: services.Messages,
		protocol: services.Protocol,
		codec:    services.Identity,
		members:  members,
		log:      log,
	}
}

func (h *ChatHandler) roomView(room *domain.ChatRoom) *domain.ChatRoom {
	out := *room
	out.ID = h.codec.Encode(room.ID)
	return &out
}

func (h *ChatHandler) messageView(m *domain.ChatMessage) *domain.ChatMessage {
	out := *m
	out.RoomID = h.codec.Encode(m.RoomID)
	return &out
}

func (h *ChatHandler) roomViews(rooms []*domain.ChatRoom) []*domain.ChatRoom {
	return lo.Map(rooms, func(r *domain.ChatRoom, _ int) *domain.ChatRoom { return h.roomView(r) })
}

func idParam(raw, name string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, apperrors.ErrInvalidRequest)
	}
	return id, nil
}

// CreatePersonal handles POST /personal/:storeRef?buyer_id=
func (h *ChatHandler) CreatePersonal(c *gin.Context) {
	buyerID, err := idParam(c.Query("buyer_id"), "buyer_id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	room, err := h.rooms.GetOrCreatePersonal(c.Request.Context(), buyerID, c.Param("storeRef"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.roomView(room))
}

type CreateGroupRequest struct {
	MemberIDs []int64 `json:"member_ids" binding:"required"`
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err))
		return
	}

	room, err := h.rooms.CreateGroup(c.Request.Context(), req.MemberIDs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, h.roomView(room))
}

func (h *ChatHandler) CreateAdmin(c *gin.Context) {
	memberID, err := idParam(c.Query("member_id"), "member_id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	room, err := h.rooms.GetOrCreateAdmin(c.Request.Context(), memberID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.roomView(room))
}

func (h *ChatHandler) ListRooms(c *gin.Context) {
	memberID, err := idParam(c.Param("memberId"), "member id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	summaries, err := h.messages.ListRooms(c.Request.Context(), memberID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := lo.Map(summaries, func(s domain.RoomSummary, _ int) domain.RoomSummary {
		s.Room = h.roomView(s.Room)
		if s.LastMessage != nil {
			s.LastMessage = h.messageView(s.LastMessage)
		}
		return s
	})
	c.JSON(http.StatusOK, out)
}

func (h *ChatHandler) History(c *gin.Context) {
	roomID := h.codec.Decode(c.Param("roomToken"))

	history, err := h.messages.History(c.Request.Context(), roomID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(history, func(m *domain.ChatMessage, _ int) *domain.ChatMessage {
		return h.messageView(m)
	}))
}

// roomMember reads the room_id token and member_id query parameters.
func (h *ChatHandler) roomMember(c *gin.Context) (string, int64, error) {
	roomID := h.codec.Decode(c.Query("room_id"))
	memberID, err := idParam(c.Query("member_id"), "member_id")
	return roomID, memberID, err
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	roomID, memberID, err := h.roomMember(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), roomID, memberID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

func (h *ChatHandler) UnreadCount(c *gin.Context) {
	roomID, memberID, err := h.roomMember(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	count, err := h.messages.UnreadCount(c.Request.Context(), roomID, memberID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"room_id": h.codec.Encode(roomID), "unread_count": count})
}

type AdminSendRequest struct {
	RoomID     string `json:"room_id" binding:"required"`
	ReceiverID int64  `json:"receiver_id" binding:"required,gt=0"`
	Message    string `json:"message" binding:"required"`
}

func (h *ChatHandler) AdminSend(c *gin.Context) {
	var req AdminSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err))
		return
	}

	message, err := h.protocol.AdminPush(c.Request.Context(), h.codec.Decode(req.RoomID), req.ReceiverID, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, h.messageView(message))
}

func (h *ChatHandler) Search(c *gin.Context) {
	rooms, err := h.rooms.SearchByMemberName(c.Request.Context(), c.Query("member_name"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, h.roomViews(rooms))
}

func (h *ChatHandler) GetMember(c *gin.Context) {
	memberID, err := idParam(c.Param("memberId"), "member id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	member, err := h.members.Resolve(c.Request.Context(), memberID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, member)
}

func (h *ChatHandler) GetMemberByEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Param("email"))
	if email == "" {
		_ = c.Error(fmt.Errorf("email is empty: %w", apperrors.ErrInvalidRequest))
		return
	}

	member, err := h.members.ResolveByEmail(c.Request.Context(), email)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, member)
}

type NotificationRequest struct {
	MemberID     int64  `json:"member_id" binding:"required,gt=0"`
	Notification string `json:"notification" binding:"required"`
}

func (h *ChatHandler) Notify(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err))
		return
	}

	delivered := h.protocol.NotifyMember(req.MemberID, req.Notification)
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}

package service

import (
	"marketplace_chat/internal/config"
	"marketplace_chat/internal/hub"
	"marketplace_chat/internal/repository"
	"marketplace_chat/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Identity  IdentityCodec
	Rooms     RoomRegistry
	Messages  MessageService
	Protocol  *ProtocolHandler
	RateLimit RateLimitService
	Audit     AuditService
}

func NewServices(repos *repository.Repositories, h *hub.Hub, dispatcher *hub.Dispatcher, cfg *config.Config, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)
	identity := NewIdentityCodec()
	rooms := NewRoomRegistry(repos.Rooms, repos.Members, repos.Serials, audit, log)
	messages := NewMessageService(repos.Messages, repos.Rooms, repos.Members, audit, log)

	return &Services{
		Auth:      NewAuthService(cfg.JWT, log),
		Identity:  identity,
		Rooms:     rooms,
		Messages:  messages,
		Protocol:  NewProtocolHandler(identity, rooms, messages, h, dispatcher, ProtocolOptions{ErrorFrames: cfg.Chat.ErrorFrames}, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
		Audit:     audit,
	}
}

package handler

import (
	"marketplace_chat/internal/config"
	"marketplace_chat/internal/repository"
	"marketplace_chat/internal/service"
	"marketplace_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Chat      *ChatHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, repos *repository.Repositories, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(services.Protocol),
		Chat:      NewChatHandler(services, repos.Members, log),
		WebSocket: NewWebSocketHandler(services.Protocol, cfg, log),
	}
}

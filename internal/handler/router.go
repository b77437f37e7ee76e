package handler

import (
	"github.com/gin-gonic/gin"
	"marketplace_chat/internal/config"
	"marketplace_chat/internal/middleware"
	"marketplace_chat/pkg/logger"
)

func NewRouter(
	handlers *Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", handlers.Health.Check)

	v1 := router.Group("/api/v1")
	{
		chat := v1.Group("/chat")
		chat.Use(rateLimitMiddleware.Limit())
		{
			chat.POST("/personal/:storeRef", handlers.Chat.CreatePersonal)
			chat.POST("/group", handlers.Chat.CreateGroup)
			chat.POST("/admin", handlers.Chat.CreateAdmin)
			chat.GET("/rooms/:memberId", handlers.Chat.ListRooms)
			chat.GET("/history/:roomToken", handlers.Chat.History)
			chat.PUT("/read", handlers.Chat.MarkRead)
			chat.GET("/unread", handlers.Chat.UnreadCount)
			chat.GET("/search", handlers.Chat.Search)
			chat.GET("/member/:memberId", handlers.Chat.GetMember)
			chat.GET("/member/email/:email", handlers.Chat.GetMemberByEmail)
			chat.POST("/notification", handlers.Chat.Notify)
			chat.POST("/admin/send", authMiddleware.RequireAdmin(), handlers.Chat.AdminSend)
		}
	}

	router.GET("/ws/chat/:token", handlers.WebSocket.HandleChat)

	return router
}

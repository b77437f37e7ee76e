package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"marketplace_chat/internal/service"
)

type HealthHandler struct {
	protocol *service.ProtocolHandler
}

func NewHealthHandler(protocol *service.ProtocolHandler) *HealthHandler {
	return &HealthHandler{protocol: protocol}
}

func (h *HealthHandler) Check(c *gin.Context) {
	rooms, connections := h.protocol.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"service":     "marketplace-chat",
		"rooms":       rooms,
		"connections": connections,
	})
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"marketplace_chat/internal/service"
	"marketplace_chat/pkg/logger"
)

const (
	ContextMemberID = "member_id"
	ContextRole     = "member_role"
)

type AuthMiddleware struct {
	authService service.AuthService
	log         logger.Logger
}

func NewAuthMiddleware(authService service.AuthService, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		log:         log,
	}
}

// RequireAdmin lets the request through only with a valid bearer token whose
// role is admin. It is a no-op when no JWT secret is configured.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.authService.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			m.log.Warn("Token validation failed", "error", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		if !claims.IsAdmin() {
			m.log.Warn("Non-admin token on admin endpoint", "member_id", claims.MemberID, "path", c.FullPath())
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			c.Abort()
			return
		}

		c.Set(ContextMemberID, claims.MemberID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"marketplace_chat/internal/config"
	"marketplace_chat/internal/repository"
	"marketplace_chat/internal/service"
	apperrors "marketplace_chat/pkg/errors"
	"marketplace_chat/pkg/jwt"
	"marketplace_chat/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit(t *testing.T) {
	log := logger.Nop()
	svc := service.NewRateLimitService(repository.NewMemoryRateLimitRepository(), log)

	r := gin.New()
	r.Use(NewRateLimitMiddleware(svc, 2, time.Minute, log).Limit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, fmt.Sprint(1-i), w.Header().Get("X-RateLimit-Remaining"))
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	require.Equal(t, generated, w.Body.String())

	supplied := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, supplied)
	require.Equal(t, supplied, serve(r, req).Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	require.NotEqual(t, "not-a-uuid", serve(r, req).Header().Get(HeaderRequestID))
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logger.Nop()))
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("load room: %w", apperrors.ErrRoomNotFound))
	})
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		_ = c.Error(apperrors.ErrInvalidRequest)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"load room: chat room not found"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/broken", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	log := logger.Nop()
	cfg := config.JWTConfig{Secret: "s3cret", Issuer: "marketplace"}
	auth := NewAuthMiddleware(service.NewAuthService(cfg, log), log)

	r := gin.New()
	r.POST("/admin", auth.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"member_id": c.GetInt64(ContextMemberID)})
	})

	request := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		return serve(r, req)
	}

	require.Equal(t, http.StatusUnauthorized, request("").Code)
	require.Equal(t, http.StatusUnauthorized, request("Token abc").Code)
	require.Equal(t, http.StatusUnauthorized, request("Bearer garbage").Code)

	expired, err := jwt.GenerateAccessToken(1, jwt.RoleAdmin, cfg.Secret, cfg.Issuer, -time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, request("Bearer "+expired).Code)

	seller, err := jwt.GenerateAccessToken(7, "seller", cfg.Secret, cfg.Issuer, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, request("Bearer "+seller).Code)

	admin, err := jwt.GenerateAccessToken(1, jwt.RoleAdmin, cfg.Secret, cfg.Issuer, time.Hour)
	require.NoError(t, err)
	w := request("Bearer " + admin)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"member_id":1}`, w.Body.String())
}

func TestRequireAdminDisabledWithoutSecret(t *testing.T) {
	log := logger.Nop()
	auth := NewAuthMiddleware(service.NewAuthService(config.JWTConfig{}, log), log)

	r := gin.New()
	r.POST("/admin", auth.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodPost, "/admin", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://shop.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	require.Equal(t, "https://shop.example", serve(r, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	require.Empty(t, serve(r, req).Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	require.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

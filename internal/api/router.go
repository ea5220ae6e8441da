package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lukasmoran/accord/internal/auth"
	"github.com/lukasmoran/accord/internal/gateway"
	"github.com/lukasmoran/accord/internal/redis"
)

// Dependencies holds all handler instances and middleware for route wiring.
type Dependencies struct {
	Messages    *MessageHandler
	Permissions *PermissionHandler
	Uploads     *UploadHandler
	Gateway     *gateway.Manager

	TokenService *auth.TokenService
	Redis        *redis.Client
}

// SetupRouter registers all API routes on the Echo instance.
func SetupRouter(e *echo.Echo, deps *Dependencies) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// WebSocket gateway
	e.GET("/gateway", deps.Gateway.HandleWebSocket)

	v1 := e.Group("/api/v1")

	// Webhook execution — token-authenticated, per-IP rate limit
	v1.POST("/webhooks/:id/:token", deps.Messages.ExecuteWebhook,
		RateLimitMiddleware(deps.Redis, 30, time.Minute),
	)

	// Protected routes — require JWT auth + general rate limit
	authMw := deps.TokenService.Middleware()
	protected := v1.Group("", authMw,
		RateLimitMiddleware(deps.Redis, 50, time.Minute),
	)

	// Messages
	protected.POST("/channels/:id/messages", deps.Messages.SendMessage)
	protected.GET("/channels/:id/messages/:message_id", deps.Messages.GetMessage)

	// Channel permission overrides
	protected.PUT("/channels/:id/permissions/:role_id", deps.Permissions.SetRolePermission)

	// Attachments
	protected.POST("/attachments", deps.Uploads.Upload)
}

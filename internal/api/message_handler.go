package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lukasmoran/accord/internal/auth"
	"github.com/lukasmoran/accord/internal/database"
	"github.com/lukasmoran/accord/internal/idempotency"
	"github.com/lukasmoran/accord/internal/models"
	"github.com/lukasmoran/accord/internal/permissions"
	"github.com/lukasmoran/accord/internal/service"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	service  *service.MessageService
	perms    *service.PermissionService
	users    database.UserRepository
	webhooks database.WebhookRepository
	channels database.ChannelRepository
	nonces   idempotency.NonceStore
}

// NewMessageHandler creates a MessageHandler.
func NewMessageHandler(
	svc *service.MessageService,
	perms *service.PermissionService,
	users database.UserRepository,
	webhooks database.WebhookRepository,
	channels database.ChannelRepository,
	nonces idempotency.NonceStore,
) *MessageHandler {
	return &MessageHandler{
		service:  svc,
		perms:    perms,
		users:    users,
		webhooks: webhooks,
		channels: channels,
		nonces:   nonces,
	}
}

// SendMessage handles POST /api/v1/channels/:id/messages.
func (h *MessageHandler) SendMessage(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}

	userID := auth.GetUserID(c)

	var req models.DataMessageSend
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	ctx := c.Request().Context()

	channel, value, err := h.perms.RequireChannelPermission(ctx, channelID, userID, permissions.SendMessage)
	if err != nil {
		return mapServiceError(c, err)
	}
	if len(req.Attachments) > 0 && !value.Has(permissions.UploadFiles) {
		return mapServiceError(c, service.MissingPermission(permissions.UploadFiles))
	}
	if len(req.Embeds) > 0 && !value.Has(permissions.SendEmbeds) {
		return mapServiceError(c, service.MissingPermission(permissions.SendEmbeds))
	}
	if req.Masquerade != nil && !value.Has(permissions.Masquerade) {
		return mapServiceError(c, service.MissingPermission(permissions.Masquerade))
	}
	if req.Interactions != nil {
		if err := h.service.ValidateInteractions(ctx, value, *req.Interactions); err != nil {
			return mapServiceError(c, err)
		}
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	if user == nil {
		return Error(c, http.StatusNotFound, "NOT_FOUND", "user not found")
	}

	idem := idempotency.New(h.nonces, userID)
	generateEmbeds := value.Has(permissions.SendEmbeds)

	msg, err := h.service.Send(ctx, channel, req, service.UserAuthor{User: user}, idem, generateEmbeds, true)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetMessage handles GET /api/v1/channels/:id/messages/:message_id.
func (h *MessageHandler) GetMessage(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	msgID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}

	ctx := c.Request().Context()

	if _, _, err := h.perms.RequireChannelPermission(ctx, channelID, auth.GetUserID(c), permissions.ReadMessageHistory); err != nil {
		return mapServiceError(c, err)
	}

	msg, err := h.service.Get(ctx, channelID, msgID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}

// ExecuteWebhook handles POST /api/v1/webhooks/:id/:token. Webhook
// sends are authenticated by the opaque token, bypass channel
// permission checks and may not mention users.
func (h *MessageHandler) ExecuteWebhook(c echo.Context) error {
	webhookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid webhook ID")
	}

	ctx := c.Request().Context()

	webhook, err := h.webhooks.GetByID(ctx, webhookID)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	if webhook == nil {
		return Error(c, http.StatusNotFound, "NOT_FOUND", "webhook not found")
	}

	ok, err := auth.VerifyToken(c.Param("token"), webhook.TokenHash)
	if err != nil || !ok {
		return Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "invalid webhook token")
	}

	channel, err := h.channels.GetByID(ctx, webhook.ChannelID)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	if channel == nil {
		return Error(c, http.StatusNotFound, "NOT_FOUND", "channel not found")
	}

	var req models.DataMessageSend
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	idem := idempotency.New(h.nonces, webhook.ID)
	msg, err := h.service.Send(ctx, channel, req, service.WebhookAuthor{Webhook: webhook}, idem, true, false)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

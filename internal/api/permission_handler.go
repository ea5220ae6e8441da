package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lukasmoran/accord/internal/auth"
	"github.com/lukasmoran/accord/internal/permissions"
	"github.com/lukasmoran/accord/internal/service"
)

// PermissionHandler handles channel permission override endpoints.
type PermissionHandler struct {
	perms *service.PermissionService
}

// NewPermissionHandler creates a PermissionHandler.
func NewPermissionHandler(perms *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{perms: perms}
}

// SetRolePermission handles PUT /api/v1/channels/:id/permissions/:role_id.
// The body is the full proposed override; partial patches are not
// supported, the override is replaced wholesale or not at all.
func (h *PermissionHandler) SetRolePermission(c echo.Context) error {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
	}
	roleID, err := strconv.ParseInt(c.Param("role_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid role ID")
	}

	var req permissions.Override
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	channel, err := h.perms.SetRolePermission(c.Request().Context(),
		channelID, roleID, auth.GetUserID(c), auth.IsBot(c), req)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, channel)
}

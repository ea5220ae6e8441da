package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lukasmoran/accord/internal/auth"
	"github.com/lukasmoran/accord/internal/service"
)

// UploadHandler handles attachment uploads.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload handles POST /api/v1/attachments. The uploaded file becomes a
// pending attachment; it only becomes visible once a message send
// claims it.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
	}
	defer src.Close()

	f, err := h.uploads.CreatePending(c.Request().Context(), auth.GetUserID(c),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, src)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, f)
}

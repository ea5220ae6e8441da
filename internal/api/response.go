package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lukasmoran/accord/internal/service"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message. Max carries the
// violated limit for limit-bounded rejections.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Max     int    `json:"max,omitempty"`
}

// Error sends a JSON error response.
func Error(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message},
	})
}

// errorJSON is an alias for Error (used by some handlers).
var errorJSON = Error

// mapServiceError translates a service error into the HTTP response.
func mapServiceError(c echo.Context, err error) error {
	var se *service.ServiceError
	if !errors.As(err, &se) {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(se.Err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(se.Err, service.ErrForbidden), errors.Is(se.Err, service.ErrNotElevated):
		status = http.StatusForbidden
	case errors.Is(se.Err, service.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(se.Err, service.ErrBadRequest), errors.Is(se.Err, service.ErrInvalidOperation):
		status = http.StatusBadRequest
	case errors.Is(se.Err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(se.Err, service.ErrPayloadTooLarge):
		status = http.StatusRequestEntityTooLarge
	}

	return c.JSON(status, ErrorResponse{
		Error: ErrorDetail{Code: se.Code, Message: se.Message, Max: se.Max},
	})
}

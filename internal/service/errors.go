package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInternal         = errors.New("internal")
	ErrNotElevated      = errors.New("not elevated")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPayloadTooLarge  = errors.New("payload too large")
)

// ServiceError wraps a sentinel error with a specific code and message
// for the handler to use. Max carries the violated limit for
// limit-bounded rejections, zero otherwise.
type ServiceError struct {
	Err     error
	Code    string
	Message string
	Max     int
}

func (e *ServiceError) Error() string { return e.Message }
func (e *ServiceError) Unwrap() error { return e.Err }

// NewError creates a ServiceError wrapping the given sentinel.
func NewError(sentinel error, code, message string) *ServiceError {
	return &ServiceError{Err: sentinel, Code: code, Message: message}
}

// Convenience constructors for common error types.

func NotFound(code, message string) *ServiceError {
	return NewError(ErrNotFound, code, message)
}

func Forbidden(code, message string) *ServiceError {
	return NewError(ErrForbidden, code, message)
}

func BadRequest(code, message string) *ServiceError {
	return NewError(ErrBadRequest, code, message)
}

func Conflict(code, message string) *ServiceError {
	return NewError(ErrConflict, code, message)
}

func Unauthorized(code, message string) *ServiceError {
	return NewError(ErrUnauthorized, code, message)
}

func Internal(code, message string) *ServiceError {
	return NewError(ErrInternal, code, message)
}

func InvalidOperation(message string) *ServiceError {
	return NewError(ErrInvalidOperation, "INVALID_OPERATION", message)
}

func InvalidProperty(message string) *ServiceError {
	return NewError(ErrBadRequest, "INVALID_PROPERTY", message)
}

func NotElevated(message string) *ServiceError {
	return NewError(ErrNotElevated, "NOT_ELEVATED", message)
}

func MissingPermission(perm fmt.Stringer) *ServiceError {
	return Forbidden("MISSING_PERMISSIONS",
		fmt.Sprintf("missing permission: %s", perm))
}

func CannotGiveMissingPermissions() *ServiceError {
	return Unauthorized("CANNOT_GIVE_MISSING_PERMISSIONS",
		"cannot grant or revoke permissions you do not have")
}

func EmptyMessage() *ServiceError {
	return BadRequest("EMPTY_MESSAGE", "message has no content, attachments or embeds")
}

func PayloadTooLarge(max int) *ServiceError {
	e := NewError(ErrPayloadTooLarge, "PAYLOAD_TOO_LARGE", "message content is too long")
	e.Max = max
	return e
}

func TooManyReplies(max int) *ServiceError {
	e := BadRequest("TOO_MANY_REPLIES", "too many replies")
	e.Max = max
	return e
}

func TooManyAttachments(max int) *ServiceError {
	e := BadRequest("TOO_MANY_ATTACHMENTS", "too many attachments")
	e.Max = max
	return e
}

func TooManyEmbeds(max int) *ServiceError {
	e := BadRequest("TOO_MANY_EMBEDS", "too many embeds")
	e.Max = max
	return e
}

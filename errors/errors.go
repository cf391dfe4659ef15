// Package errors defines the application error taxonomy. Every failure that
// crosses a package boundary is expressed as an *AppError carrying the HTTP
// status the error handler middleware should translate it to.
package errors

import (
	"fmt"
	"net/http"

	"github.com/ascent-climbing/ascent-backend/logger"
)

type ErrorType string

const (
	ValidationError       ErrorType = "VALIDATION_ERROR"
	NotFoundError         ErrorType = "NOT_FOUND"
	AuthError             ErrorType = "AUTHENTICATION_ERROR"
	ConflictError         ErrorType = "CONFLICT"
	InvalidOperationError ErrorType = "INVALID_OPERATION"
	SignatureError        ErrorType = "SIGNATURE_INVALID"
	DatabaseError         ErrorType = "DATABASE_ERROR"
	ServerError           ErrorType = "SERVER_ERROR"
	NotImplementedError   ErrorType = "NOT_IMPLEMENTED"
)

// AppError represents a structured application error.
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped raw error to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the HTTP status for the error, defaulting to 500.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// New creates a new AppError with the status implied by its type.
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, detail string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func InvalidOperation(message string, detail string) *AppError {
	return &AppError{
		Type:       InvalidOperationError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

// SignatureInvalid is used for webhook requests that fail verification.
// Clerk retries delivery on any non-2xx, so 400 is the whole contract here.
func SignatureInvalid(err error) *AppError {
	return &AppError{
		Type:       SignatureError,
		Message:    "Webhook verification failed",
		HTTPStatus: http.StatusBadRequest,
		Raw:        err,
	}
}

// NewDatabaseError logs the original storage error and returns a sanitized
// AppError so internal detail never reaches a client.
func NewDatabaseError(err error) *AppError {
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func NotImplemented(message string) *AppError {
	return &AppError{
		Type:       NotImplementedError,
		Message:    message,
		HTTPStatus: http.StatusNotImplemented,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError, InvalidOperationError, SignatureError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ConflictError:
		return http.StatusConflict
	case NotImplementedError:
		return http.StatusNotImplemented
	case DatabaseError, ServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

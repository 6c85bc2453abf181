package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest   = NewAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrSnapshotNotReady = NewAPIError(http.StatusServiceUnavailable, "SNAPSHOT_NOT_READY", "No canonical snapshot has been published yet")
	ErrResourceNotFound = NewAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrInternalServer   = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// NotFoundError creates a not found API error naming the resource
func NotFoundError(resource string) *APIError {
	return &APIError{
		StatusCode: http.StatusNotFound,
		ErrorCode:  "NOT_FOUND",
		Message:    resource + " not found",
		Details:    resource,
	}
}

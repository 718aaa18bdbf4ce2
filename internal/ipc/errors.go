package ipc

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lyallcooper/folio/internal/db"
	"github.com/lyallcooper/folio/internal/dialog"
	"github.com/lyallcooper/folio/internal/documents"
	"github.com/lyallcooper/folio/internal/shell"
)

// APIError is the JSON error envelope returned by every command route
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 error for a malformed request
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 error for a missing or invalid field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: message,
	}
}

// NewForbiddenError creates a 403 error
func NewForbiddenError(message string) *APIError {
	return &APIError{
		Status:  http.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: message,
	}
}

// NewServiceUnavailableError creates a 503 error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
	}
}

// NewCommandError creates a 500 error. The command's error text is the
// message, since that is what the front-end shows.
func NewCommandError(cause error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "COMMAND_FAILED",
		Message: cause.Error(),
	}
}

// commandError maps an error returned by a command to its envelope
func commandError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, documents.ErrMissingPath),
		errors.Is(err, documents.ErrInvalidPathHeader),
		errors.Is(err, documents.ErrDecodePayload),
		errors.Is(err, documents.ErrMissingData),
		errors.Is(err, db.ErrUnsupportedURL),
		errors.Is(err, shell.ErrUnsupportedTarget):
		return NewBadRequestError(err.Error(), nil)
	case errors.Is(err, db.ErrNotLoaded):
		return NewNotFoundError(err.Error())
	case errors.Is(err, dialog.ErrUnavailable):
		return NewServiceUnavailableError(err.Error())
	}
	return NewCommandError(err)
}

// ErrorHandler renders errors as APIError JSON.
// Usage: e.HTTPErrorHandler = ipc.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
		if httpErr.Internal != nil {
			apiErr.Details = httpErr.Internal.Error()
		}
	default:
		apiErr = commandError(err)
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}

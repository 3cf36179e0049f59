// Package errors provides custom error types for the cakebook API.
// Store and handler errors use AppError so clients always get a stable
// code and message while internal causes stay in the logs.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError carrying the same code, so
// wrapped copies still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Editor mode errors.
var (
	ErrUnauthorized        = &AppError{Code: "UNAUTHORIZED", Message: "Editor token required", StatusCode: http.StatusUnauthorized}
	ErrInvalidEditorSecret = &AppError{Code: "INVALID_EDITOR_SECRET", Message: "Invalid editor password", StatusCode: http.StatusUnauthorized}
	ErrEditorModeRequired  = &AppError{Code: "EDITOR_MODE_REQUIRED", Message: "Editor mode is not active", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrBadGateway     = &AppError{Code: "BAD_GATEWAY", Message: "Resource unavailable offline", StatusCode: http.StatusBadGateway}
)

// Persistence errors. The in-memory change is kept when these are returned.
var (
	ErrPersistenceFailed = &AppError{Code: "PERSISTENCE_FAILED", Message: "Change applied but could not be saved", StatusCode: http.StatusServiceUnavailable}
)

// Recipe errors.
var (
	ErrRecipeNotFound = &AppError{Code: "RECIPE_NOT_FOUND", Message: "Recipe not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryInUse    = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing recipes", StatusCode: http.StatusConflict}
	ErrCategoryExists   = &AppError{Code: "CATEGORY_EXISTS", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrReservedCategory = &AppError{Code: "RESERVED_CATEGORY", Message: "The Todas category cannot be changed", StatusCode: http.StatusBadRequest}
)

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid username or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// Pipeline and interview domain errors. Services return these directly so
// handlers and tests can match on them with errors.Is.
var (
	// ErrNoOpMove rejects moving an application onto the stage it is already in.
	ErrNoOpMove = &AppError{
		Code:       "pipeline.noop_move",
		Message:    "Application is already in the requested stage",
		StatusCode: http.StatusConflict,
	}

	// ErrConcurrencyConflict signals that the application stage changed since the caller read it.
	ErrConcurrencyConflict = &AppError{
		Code:       "pipeline.stage_conflict",
		Message:    "Application was moved by another user, reload and retry",
		StatusCode: http.StatusConflict,
	}

	// ErrInvalidTransition rejects an interview event not permitted from the current state.
	ErrInvalidTransition = &AppError{
		Code:       "interview.invalid_transition",
		Message:    "Interview state does not allow this operation",
		StatusCode: http.StatusConflict,
	}

	// ErrTerminalState rejects any mutation of a completed or cancelled interview.
	ErrTerminalState = &AppError{
		Code:       "interview.terminal_state",
		Message:    "Interview is already completed or cancelled",
		StatusCode: http.StatusConflict,
	}

	// ErrInvalidSlot rejects confirming a slot that is not among the proposed slots.
	ErrInvalidSlot = &AppError{
		Code:       "interview.invalid_slot",
		Message:    "Selected slot is not among the proposed slots",
		StatusCode: http.StatusUnprocessableEntity,
	}

	// ErrActiveInterviewExists rejects creating a second live interview for the same pair.
	ErrActiveInterviewExists = &AppError{
		Code:       "interview.active_exists",
		Message:    "An interview is already pending or scheduled for this candidate and vacancy",
		StatusCode: http.StatusConflict,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewValidation builds a VALIDATION_ERROR for a specific malformed input.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// IsValidation reports whether the error carries the validation code.
func IsValidation(err error) bool {
	appErr := FromError(err)
	return appErr != nil && appErr.Code == "VALIDATION_ERROR"
}

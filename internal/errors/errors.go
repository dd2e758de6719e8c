// Package errors defines the application error type and the JSON error
// envelope returned by the HTTP server.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes used in HTTP envelopes.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError is an error with an HTTP status and machine-readable code.
//
// Handlers return AppError values (directly or wrapped) and the shared
// responder turns them into the JSON envelope. Errors that are not
// AppError render as INTERNAL_ERROR without leaking their message.
type AppError struct {
	Code    string
	Status  int
	Message string
	Details map[string]any
	Err     error

	requestID string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured context to the error and returns it.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// New creates an AppError with an explicit code and status.
func New(code string, status int, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message}
}

// NewBadRequestError creates a 400 error.
func NewBadRequestError(message string) *AppError {
	return New(CodeBadRequest, http.StatusBadRequest, message)
}

// NewNotFoundError creates a 404 error.
func NewNotFoundError(message string) *AppError {
	return New(CodeNotFound, http.StatusNotFound, message)
}

// NewMethodNotAllowedError creates a 405 error.
func NewMethodNotAllowedError(message string) *AppError {
	return New(CodeMethodNotAllowed, http.StatusMethodNotAllowed, message)
}

// NewServiceUnavailableError creates a 503 error.
func NewServiceUnavailableError(message string) *AppError {
	return New(CodeServiceUnavailable, http.StatusServiceUnavailable, message)
}

// NewExternalServiceError creates a 502 error for upstream failures.
func NewExternalServiceError(message string) *AppError {
	return New(CodeExternalService, http.StatusBadGateway, message)
}

// WrapInternal wraps an unexpected error as a 500, carrying the request ID
// from ctx when one is present.
func WrapInternal(ctx context.Context, err error, message string) *AppError {
	appErr := &AppError{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     err,
	}
	if id := RequestIDFromContext(ctx); id != "" {
		appErr.requestID = id
	}
	return appErr
}

// HTTPErrorResponse is the JSON envelope for all HTTP errors.
type HTTPErrorResponse struct {
	Error HTTPErrorBody `json:"error"`
}

// HTTPErrorBody is the error payload inside the envelope.
type HTTPErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// RespondWithError writes err to w as a JSON envelope.
//
// AppError values keep their code, status, message, and details. Any
// other error becomes a generic 500 INTERNAL_ERROR so internals are not
// exposed to clients. The request ID is taken from the request context.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{
			Code:    CodeInternal,
			Status:  http.StatusInternalServerError,
			Message: "internal server error",
			Err:     err,
		}
	}

	requestID := appErr.requestID
	if requestID == "" && r != nil {
		requestID = RequestIDFromContext(r.Context())
	}

	resp := HTTPErrorResponse{
		Error: HTTPErrorBody{
			Code:      appErr.Code,
			Message:   appErr.Message,
			RequestID: requestID,
			Details:   appErr.Details,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	_ = json.NewEncoder(w).Encode(resp)
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chroniclebot/chronicle/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
const (
	ErrMsgInvalidRequest    = "Invalid request body"
	ErrMsgMissingQueryParam = "Missing %s query parameter"

	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgConfigNotFoundHTTP = "Sync config not found"
	ErrMsgUpstreamError      = "Upstream service unavailable. Please try again later."
	ErrMsgTooManyRequests    = "Too many requests. Please try again later."
)

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// mapServiceError maps domain errors to HTTP status codes and user-facing
// messages without leaking internals.
func mapServiceError(err error) (int, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	case errors.Is(err, domain.ErrConfigNotFound):
		return http.StatusNotFound, ErrMsgConfigNotFoundHTTP
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateMessage):
		return http.StatusConflict, "Message already synced"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, ErrMsgTooManyRequests
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrConnectivity):
		return http.StatusBadGateway, ErrMsgUpstreamError
	default:
		return http.StatusInternalServerError, ErrMsgGenericServerError
	}
}

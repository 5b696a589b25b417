package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Upstream errors
	ErrMsgConnectivity = "upstream unreachable"
	ErrMsgRateLimited  = "rate limited by upstream"

	// Auth errors
	ErrMsgUnauthorized = "authorization failed"

	// Lookup errors
	ErrMsgNotFound       = "resource not found"
	ErrMsgConfigNotFound = "sync config not found"

	// Validation errors
	ErrMsgInvalidInput = "invalid input"

	// Sync errors
	ErrMsgDuplicateMessage = "message already recorded"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrConnectivity     = errors.New(ErrMsgConnectivity)
	ErrRateLimited      = errors.New(ErrMsgRateLimited)
	ErrUnauthorized     = errors.New(ErrMsgUnauthorized)
	ErrNotFound         = errors.New(ErrMsgNotFound)
	ErrConfigNotFound   = errors.New(ErrMsgConfigNotFound)
	ErrInvalidInput     = errors.New(ErrMsgInvalidInput)
	ErrDuplicateMessage = errors.New(ErrMsgDuplicateMessage)
)

// ErrorCode is the stable classification stored on failed history rows and
// returned by the API. Every error that reaches a sync outcome maps to one.
type ErrorCode string

const (
	ErrorCodeConnectivity ErrorCode = "connectivity"
	ErrorCodeAuth         ErrorCode = "auth"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeValidation   ErrorCode = "validation"
	ErrorCodeDuplicate    ErrorCode = "duplicate"
	ErrorCodeRateLimit    ErrorCode = "rate_limit"
	ErrorCodeUnknown      ErrorCode = "unknown"
)

// CodeOf maps an error to its classification. Errors that wrap none of the
// domain sentinels classify as unknown.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateMessage):
		return ErrorCodeDuplicate
	case errors.Is(err, ErrRateLimited):
		return ErrorCodeRateLimit
	case errors.Is(err, ErrUnauthorized):
		return ErrorCodeAuth
	case errors.Is(err, ErrConfigNotFound), errors.Is(err, ErrNotFound):
		return ErrorCodeNotFound
	case errors.Is(err, ErrInvalidInput):
		return ErrorCodeValidation
	case errors.Is(err, ErrConnectivity):
		return ErrorCodeConnectivity
	default:
		return ErrorCodeUnknown
	}
}

// IsRetryable reports whether retrying the same operation could succeed.
// Auth, validation, not-found and duplicate failures never become retryable.
func IsRetryable(err error) bool {
	switch CodeOf(err) {
	case ErrorCodeConnectivity, ErrorCodeRateLimit:
		return true
	default:
		return false
	}
}

package core

import (
	"fmt"
)

// Error is the canonical error for the gateway. Every failure that crosses a
// package boundary is either one of these or gets wrapped into one at the
// HTTP edge.
type Error struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Param     string    `json:"param,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s (provider: %s)", e.Type, e.Message, e.Provider)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorType categorizes errors.
type ErrorType string

const (
	ErrInvalidRequest ErrorType = "invalid_request_error"
	// ErrConfiguration means a required credential or setting is absent.
	// Surfaced immediately; there is no fallback.
	ErrConfiguration ErrorType = "configuration_error"
	// ErrAuthentication means a credential was rejected, either by the
	// gateway or by an upstream provider during verification.
	ErrAuthentication ErrorType = "authentication_error"
	// ErrSessionNotFound is soft: stream reports it as {success:false} and
	// end substitutes synthesized study material.
	ErrSessionNotFound ErrorType = "session_not_found_error"
	ErrNotFound        ErrorType = "not_found_error"
	// ErrProviderUnavailable covers any upstream network/API failure. Every
	// path that can raise it has a documented local fallback.
	ErrProviderUnavailable ErrorType = "provider_unavailable_error"
	// ErrPersistence means the durable conversation write failed. Surfaced;
	// this is the last step before the user is shown their results.
	ErrPersistence ErrorType = "persistence_error"
	ErrInternal    ErrorType = "internal_error"
)

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
	}
}

// NewInvalidRequestErrorWithParam creates an invalid request error with a parameter.
func NewInvalidRequestErrorWithParam(message, param string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
		Param:   param,
	}
}

// NewConfigurationError creates a missing-credential/setting error.
func NewConfigurationError(message string) *Error {
	return &Error{
		Type:    ErrConfiguration,
		Message: message,
	}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{
		Type:    ErrAuthentication,
		Message: message,
	}
}

// NewSessionNotFoundError creates a soft session-not-found error.
func NewSessionNotFoundError(sessionID string) *Error {
	return &Error{
		Type:    ErrSessionNotFound,
		Message: fmt.Sprintf("session %q is not registered", sessionID),
	}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *Error {
	return &Error{
		Type:    ErrNotFound,
		Message: message,
	}
}

// NewProviderUnavailableError wraps an upstream failure.
func NewProviderUnavailableError(provider string, underlying error) *Error {
	return &Error{
		Type:     ErrProviderUnavailable,
		Message:  fmt.Sprintf("%s: %v", provider, underlying),
		Provider: provider,
		cause:    underlying,
	}
}

// NewPersistenceError wraps a durable-store failure.
func NewPersistenceError(underlying error) *Error {
	return &Error{
		Type:    ErrPersistence,
		Message: fmt.Sprintf("conversation store: %v", underlying),
		cause:   underlying,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(underlying error) *Error {
	return &Error{
		Type:    ErrInternal,
		Message: fmt.Sprintf("internal: %v", underlying),
		cause:   underlying,
	}
}

// HasFallback reports whether the gateway has a documented local fallback
// for this error kind. Errors with a fallback must never escape to callers.
func (e *Error) HasFallback() bool {
	switch e.Type {
	case ErrSessionNotFound, ErrProviderUnavailable:
		return true
	default:
		return false
	}
}

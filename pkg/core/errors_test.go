package core

import (
	"errors"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := NewInvalidRequestError("bad input")
	want := "invalid_request_error: bad input"
	if err.Error() != want {
		t.Fatalf("error=%q, want %q", err.Error(), want)
	}

	provErr := NewProviderUnavailableError("elevenlabs", errors.New("dial tcp: refused"))
	if got := provErr.Error(); got != "provider_unavailable_error: elevenlabs: dial tcp: refused (provider: elevenlabs)" {
		t.Fatalf("error=%q", got)
	}
}

func TestErrorUnwrap(t *testing.T) {
	underlying := errors.New("disk full")
	err := NewPersistenceError(underlying)
	if !errors.Is(err, underlying) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}

func TestErrorAsFromPlainChain(t *testing.T) {
	var coreErr *Error
	wrapped := error(NewConfigurationError("key missing"))
	if !errors.As(wrapped, &coreErr) {
		t.Fatal("errors.As failed")
	}
	if coreErr.Type != ErrConfiguration {
		t.Fatalf("type=%q", coreErr.Type)
	}
}

func TestHasFallback(t *testing.T) {
	cases := map[ErrorType]bool{
		ErrSessionNotFound:     true,
		ErrProviderUnavailable: true,
		ErrInvalidRequest:      false,
		ErrConfiguration:       false,
		ErrAuthentication:      false,
		ErrPersistence:         false,
		ErrInternal:            false,
	}
	for errType, want := range cases {
		err := &Error{Type: errType}
		if err.HasFallback() != want {
			t.Fatalf("type=%q fallback=%v, want %v", errType, err.HasFallback(), want)
		}
	}
}

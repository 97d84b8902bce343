package apierror

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/bizenglishai/coach-gateway/pkg/core"
)

func TestFromErrorNil(t *testing.T) {
	coreErr, status := FromError(nil, "req_1")
	if coreErr != nil || status != http.StatusOK {
		t.Fatalf("coreErr=%v status=%d", coreErr, status)
	}
}

func TestFromErrorCanonical(t *testing.T) {
	coreErr, status := FromError(core.NewNotFoundError("conversation not found"), "req_1")
	if status != http.StatusNotFound {
		t.Fatalf("status=%d", status)
	}
	if coreErr.RequestID != "req_1" {
		t.Fatalf("request id=%q", coreErr.RequestID)
	}
}

func TestFromErrorOpaqueForUnknown(t *testing.T) {
	coreErr, status := FromError(errors.New("sql: connection reset"), "req_1")
	if status != http.StatusInternalServerError {
		t.Fatalf("status=%d", status)
	}
	if coreErr.Message != "internal error" {
		t.Fatalf("message=%q leaked", coreErr.Message)
	}
}

func TestFromErrorContext(t *testing.T) {
	coreErr, status := FromError(context.DeadlineExceeded, "req_1")
	if status != http.StatusGatewayTimeout || coreErr.Type != core.ErrProviderUnavailable {
		t.Fatalf("status=%d type=%q", status, coreErr.Type)
	}

	coreErr, status = FromError(context.Canceled, "req_1")
	if status != http.StatusRequestTimeout || coreErr.Type != core.ErrInternal {
		t.Fatalf("status=%d type=%q", status, coreErr.Type)
	}
}

func TestStatusFromType(t *testing.T) {
	cases := map[core.ErrorType]int{
		core.ErrInvalidRequest:      http.StatusBadRequest,
		core.ErrConfiguration:       http.StatusInternalServerError,
		core.ErrAuthentication:      http.StatusUnauthorized,
		core.ErrSessionNotFound:     http.StatusNotFound,
		core.ErrNotFound:            http.StatusNotFound,
		core.ErrProviderUnavailable: http.StatusBadGateway,
		core.ErrPersistence:         http.StatusInternalServerError,
		core.ErrInternal:            http.StatusInternalServerError,
	}
	for errType, want := range cases {
		if got := StatusFromType(errType); got != want {
			t.Fatalf("type=%q status=%d, want %d", errType, got, want)
		}
	}
}

func TestFromErrorDoesNotMutateOriginal(t *testing.T) {
	original := core.NewInvalidRequestError("bad input")
	coreErr, _ := FromError(original, "req_1")
	if original.RequestID != "" {
		t.Fatalf("original mutated: %q", original.RequestID)
	}
	if coreErr.RequestID != "req_1" {
		t.Fatalf("copy request id=%q", coreErr.RequestID)
	}
}

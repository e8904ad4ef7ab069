package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"invalid amount", ErrInvalidAmount},
		{"verification pending", ErrVerificationPending},
		{"verification rejected", ErrVerificationRejected},
		{"stale location", ErrStaleLocation},
		{"subscription closed", ErrSubscriptionClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("op: %w", tc.err)
			if !stdErrors.Is(wrapped, tc.err) {
				t.Fatalf("expected wrapped error to match: %v", tc.err)
			}
		})
	}
}

func TestBackendErrorUserMessage(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{http.StatusNotFound, MessageConnectionLost},
		{http.StatusInternalServerError, MessageWrongLocation},
		{http.StatusBadRequest, MessageGeneric},
		{http.StatusBadGateway, MessageGeneric},
	}

	for _, tc := range cases {
		err := &BackendError{StatusCode: tc.status}
		if got := err.UserMessage(); got != tc.want {
			t.Fatalf("status %d: expected %q, got %q", tc.status, tc.want, got)
		}
	}
}

func TestUserMessage(t *testing.T) {
	wrapped := fmt.Errorf("fetch order: %w", &BackendError{StatusCode: http.StatusNotFound, Message: "missing"})
	if got := UserMessage(wrapped); got != MessageConnectionLost {
		t.Fatalf("expected %q, got %q", MessageConnectionLost, got)
	}
	if got := UserMessage(fmt.Errorf("%w: dial tcp", ErrBackendUnreachable)); got != MessageUnreachable {
		t.Fatalf("expected %q, got %q", MessageUnreachable, got)
	}
	if got := UserMessage(stdErrors.New("boom")); got != MessageGeneric {
		t.Fatalf("expected %q, got %q", MessageGeneric, got)
	}
}

func TestBackendErrorText(t *testing.T) {
	if got := (&BackendError{StatusCode: 500, Message: "boom"}).Error(); got != "backend responded 500: boom" {
		t.Fatalf("unexpected error text %q", got)
	}
	if got := (&BackendError{StatusCode: 502}).Error(); got != "backend responded 502" {
		t.Fatalf("unexpected error text %q", got)
	}
}

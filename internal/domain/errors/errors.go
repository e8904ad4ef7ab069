package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrInvalidToken         = errors.New("invalid token")
	ErrVerificationPending  = errors.New("driver verification pending")
	ErrVerificationRejected = errors.New("driver verification rejected")
	ErrDriverBusy           = errors.New("driver is busy")
	ErrProfileNotLoaded     = errors.New("driver profile not loaded")
	ErrStaleLocation        = errors.New("location older than stored value")
	ErrNoActiveSession      = errors.New("no active order session")
	ErrSubscriptionClosed   = errors.New("subscription closed")
	ErrBackendUnreachable   = errors.New("backend unreachable")
	ErrInvalidDeviceToken   = errors.New("invalid device token")
	ErrInvalidLocation      = errors.New("invalid location")
)

// User facing messages derived from failures.
const (
	MessageUnreachable    = "cannot connect to server"
	MessageConnectionLost = "connection lost"
	MessageWrongLocation  = "please arrive at the correct delivery location"
	MessageGeneric        = "an error occurred, please retry"
)

// BackendError is a non-2xx response of the REST backend.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend responded %d", e.StatusCode)
}

// UserMessage maps the status code to the message shown to the driver.
func (e *BackendError) UserMessage() string {
	switch e.StatusCode {
	case http.StatusNotFound:
		return MessageConnectionLost
	case http.StatusInternalServerError:
		return MessageWrongLocation
	default:
		return MessageGeneric
	}
}

// UserMessage returns the driver facing message for any backend call failure.
func UserMessage(err error) string {
	var be *BackendError
	switch {
	case errors.As(err, &be):
		return be.UserMessage()
	case errors.Is(err, ErrBackendUnreachable):
		return MessageUnreachable
	default:
		return MessageGeneric
	}
}

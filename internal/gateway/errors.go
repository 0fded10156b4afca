package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized matches (via errors.Is) every Error carrying HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// Kind classifies a failed API call.
type Kind int

const (
	// KindTransport: no response was received.
	KindTransport Kind = iota + 1
	// KindNonJSON: an error status with a body that is not JSON.
	KindNonJSON
	// KindAPI: an error status with a JSON body.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNonJSON:
		return "non-json"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

const transportMessage = "Unable to reach the server. Please check your connection and try again."

// Error is the single normalized failure of Client.Call.
// Message is meant for direct display to the user.
type Error struct {
	Kind    Kind
	Status  int // 0 for transport failures
	Message string
	Payload Payload // decoded error body, KindAPI only

	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e != nil && e.Status == http.StatusUnauthorized
}

// Unauthorized reports whether the failure triggered the session teardown.
func (e *Error) Unauthorized() bool { return e != nil && e.Status == http.StatusUnauthorized }

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: transportMessage, cause: err}
}

func nonJSONError(status int) *Error {
	return &Error{
		Kind:    KindNonJSON,
		Status:  status,
		Message: fmt.Sprintf("Server returned a non-JSON response. Status: %d.", status),
	}
}

func apiError(status int, p Payload) *Error {
	msg := p.Message()
	if msg == "" {
		msg = fmt.Sprintf("API request failed with status %d", status)
	}
	return &Error{Kind: KindAPI, Status: status, Message: msg, Payload: p}
}

package web

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials mirrors the API's 401 on login; the message never
// says which field was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// NetworkError wraps a transport-level failure: the request never produced
// an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// InvalidResponseError means the server answered but the payload was
// unusable: a non-success status or a body missing required fields.
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string { return e.Reason }

// RequestFailedError is a server-side rejection with a message taken from
// the error body when present.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

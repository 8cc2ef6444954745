package sdk

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBody is wrapped by TransportError when a response has no body.
	ErrEmptyBody = errors.New("taskforce: empty response body")
	// ErrMalformedBody is wrapped by TransportError when a body is not JSON.
	ErrMalformedBody = errors.New("taskforce: malformed response body")
)

// ServerError is returned when the backend answered with a non-2xx status and
// a JSON body. Msg is empty when the body carried no "msg" string.
type ServerError struct {
	StatusCode int
	Msg        string
}

func (e *ServerError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("taskforce: server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("taskforce: server returned status %d: %s", e.StatusCode, e.Msg)
}

// TransportError is returned when the request never produced a usable
// response: the connection failed, or the body was empty or undecodable.
// StatusCode is zero when no response was received.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("taskforce: transport: %v", e.Err)
	}
	return fmt.Sprintf("taskforce: transport (status %d): %v", e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

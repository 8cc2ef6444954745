package flow

import (
	"errors"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
	"github.com/felixgeelhaar/taskforce/pkg/sdk"
)

// Precondition errors. They are returned to the caller and leave the
// controller state untouched.
var (
	ErrEmptyDescription  = task.ErrEmptyDescription
	ErrEmptySelection    = task.ErrNoSubtasks
	ErrInvalidIndex      = task.ErrIndexOutOfRange
	ErrBusy              = errors.New("a request is already in flight")
	ErrInvalidTransition = errors.New("transition not allowed")
)

// User-facing messages stored in the error slot.
const (
	MsgServerGeneric = "An error occurred while processing your request."
	MsgTransport     = "An error occurred while communicating with the server."
	MsgUnexpected    = "An unexpected error occurred."
)

// Describe converts a request failure into the message shown to the user.
func Describe(err error) string {
	var se *sdk.ServerError
	if errors.As(err, &se) {
		if se.Msg != "" {
			return se.Msg
		}
		return MsgServerGeneric
	}
	var te *sdk.TransportError
	if errors.As(err, &te) {
		return MsgTransport
	}
	return MsgUnexpected
}

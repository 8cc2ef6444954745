package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// RequestError carries the message a failed backend request left in the
// controller's error slot.
type RequestError struct {
	Msg string
}

func (e *RequestError) Error() string { return e.Msg }

// MapError converts known errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Msg {
		case flow.MsgTransport:
			return NewCLIError(reqErr.Msg, "Is the backend running? Start it with 'taskforce serve' or pass --backend", nil)
		case flow.MsgServerGeneric, flow.MsgUnexpected:
			return NewCLIError(reqErr.Msg, "Re-run with --log-level debug for details", nil)
		default:
			return NewCLIError(reqErr.Msg, "", nil)
		}
	}

	switch {
	case errors.Is(err, flow.ErrEmptyDescription):
		return NewCLIError("task description is empty", "Pass a description, e.g. taskforce subtasks \"Plan a birthday party\"", err)
	case errors.Is(err, flow.ErrEmptySelection):
		return NewCLIError("no subtasks selected", "Use --select 1,3 or --select all", err)
	case errors.Is(err, flow.ErrInvalidIndex):
		return NewCLIError("subtask number out of range", "Numbers start at 1 and refer to the listed subtasks", err)
	case errors.Is(err, flow.ErrBusy):
		return NewCLIError("a request is already running", "Wait for it to finish and retry", err)
	}
	return err
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		_, _ = red.Fprintf(w, "Error: %s\n", cliErr.Message)
		if cliErr.Hint != "" {
			_, _ = fmt.Fprintf(w, "%s %s\n", color.YellowString("Hint:"), cliErr.Hint)
		}
		return
	}
	_, _ = red.Fprintf(w, "Error: %v\n", err)
}

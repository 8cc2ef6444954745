package task

import "errors"

// Task domain errors.
var (
	// ErrEmptyDescription indicates a blank task description.
	ErrEmptyDescription = errors.New("task description must not be empty")
	// ErrIndexOutOfRange indicates a subtask index outside the current sequence.
	ErrIndexOutOfRange = errors.New("subtask index out of range")
	// ErrNoSubtasks indicates an empty subtask selection.
	ErrNoSubtasks = errors.New("at least one subtask must be selected")
)

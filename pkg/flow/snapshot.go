package flow

import (
	"strings"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

// Snapshot is an immutable copy of the controller state handed to
// presentations.
type Snapshot struct {
	State       string               `json:"state"`
	Description string               `json:"description"`
	Subtasks    []task.Subtask       `json:"subtasks"`
	Selected    []int                `json:"selected"`
	Structure   []task.StructureStep `json:"structure"`
	Error       string               `json:"error,omitempty"`
	Loading     bool                 `json:"loading"`
}

// IsSelected reports whether the subtask at index is selected.
func (s Snapshot) IsSelected(index int) bool {
	for _, i := range s.Selected {
		if i == index {
			return true
		}
	}
	return false
}

// CanSubmit reports whether a description fetch may be started for input.
func (s Snapshot) CanSubmit(input string) bool {
	return !s.Loading && strings.TrimSpace(input) != ""
}

// CanRequestStructure reports whether a structure fetch may be started.
func (s Snapshot) CanRequestStructure() bool {
	return !s.Loading && len(s.Selected) > 0
}

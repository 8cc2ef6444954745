// Package task holds the value types exchanged between the decomposition
// client, the backend service and the presentation layers.
package task

import (
	"fmt"
	"strings"
)

// Subtask is an atomic unit of work with an effort estimate, produced by
// decomposing a task description.
type Subtask struct {
	Description  string `json:"description"`
	TimeEstimate string `json:"time_estimate"`
}

// String renders the subtask the way every presentation lists it.
func (s Subtask) String() string {
	return fmt.Sprintf("%s - %s", s.Description, s.TimeEstimate)
}

// StructureStep is a higher-level plan stage aggregating one or more
// subtasks, with its own detail list and estimate.
type StructureStep struct {
	Step         string   `json:"step"`
	Details      []string `json:"details"`
	TimeEstimate string   `json:"time_estimate"`
}

// DescriptionRequest is the body of POST /get_subtasks.
type DescriptionRequest struct {
	Description string `json:"description"`
}

// SelectionRequest is the body of POST /get_overall_structure.
type SelectionRequest struct {
	SelectedSubtasks []Subtask `json:"selected_subtasks"`
}

// ErrorBody is the JSON error payload returned by the backend service.
type ErrorBody struct {
	Msg string `json:"msg"`
}

// ValidateDescription reports whether a description may be submitted.
// Only blank input is rejected; the text itself is sent unmodified.
func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// Project returns the subtasks at the given indices, in ascending index
// order regardless of the order the indices were supplied in. Indices
// outside the sequence are reported as ErrIndexOutOfRange.
func Project(subtasks []Subtask, indices []int) ([]Subtask, error) {
	sorted := SortedIndices(indices)
	out := make([]Subtask, 0, len(sorted))
	for _, i := range sorted {
		if i < 0 || i >= len(subtasks) {
			return nil, fmt.Errorf("%w: %d (have %d subtasks)", ErrIndexOutOfRange, i, len(subtasks))
		}
		out = append(out, subtasks[i])
	}
	return out, nil
}

// JoinLines renders subtasks one per line as "description - estimate".
func JoinLines(subtasks []Subtask) string {
	lines := make([]string, 0, len(subtasks))
	for _, s := range subtasks {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}

package task

import "sort"

// Selection is a set of indices into the current subtask sequence.
// The zero value is an empty selection ready to use.
type Selection struct {
	set map[int]struct{}
}

// Toggle adds index when absent and removes it when present.
func (s *Selection) Toggle(index int) {
	if s.set == nil {
		s.set = make(map[int]struct{})
	}
	if _, ok := s.set[index]; ok {
		delete(s.set, index)
		return
	}
	s.set[index] = struct{}{}
}

// Has reports whether index is selected.
func (s *Selection) Has(index int) bool {
	_, ok := s.set[index]
	return ok
}

// Len returns the number of selected indices.
func (s *Selection) Len() int {
	return len(s.set)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.set = nil
}

// Indices returns the selected indices in ascending order.
func (s *Selection) Indices() []int {
	out := make([]int, 0, len(s.set))
	for i := range s.set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// SortedIndices returns a sorted, de-duplicated copy of indices.
func SortedIndices(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

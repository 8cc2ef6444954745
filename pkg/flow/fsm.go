package flow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Workflow states.
const (
	StateIdle                = "idle"
	StateSubmittingSubtasks  = "submitting_subtasks"
	StateHasSubtasks         = "has_subtasks"
	StateSubmittingStructure = "submitting_structure"
	StateHasStructure        = "has_structure"
	StateFailed              = "failed"
)

// Workflow events.
const (
	EventSubmitSubtasks  = "submit_subtasks"
	EventSubtasksLoaded  = "subtasks_loaded"
	EventSubmitStructure = "submit_structure"
	EventStructureLoaded = "structure_loaded"
	EventFail            = "fail"
)

// flowContext lets guards observe controller state without copying it.
type flowContext struct {
	SelectionSize func() int
}

type workflowMachine struct {
	interpreter *statekit.Interpreter[flowContext]
}

func newWorkflowMachine(selectionSize func() int) (*workflowMachine, error) {
	builder := statekit.NewMachine[flowContext]("request-flow").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(flowContext{SelectionSize: selectionSize}).
		WithGuard("hasSelection", func(ctx flowContext, _ statekit.Event) bool {
			return ctx.SelectionSize() > 0
		})

	builder.State(StateIdle).
		On(EventSubmitSubtasks).Target(StateSubmittingSubtasks).
		Done()

	builder.State(StateSubmittingSubtasks).
		On(EventSubtasksLoaded).Target(StateHasSubtasks).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateHasSubtasks).
		On(EventSubmitSubtasks).Target(StateSubmittingSubtasks).
		On(EventSubmitStructure).Target(StateSubmittingStructure).Guard("hasSelection").
		Done()

	builder.State(StateSubmittingStructure).
		On(EventStructureLoaded).Target(StateHasStructure).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateHasStructure).
		On(EventSubmitSubtasks).Target(StateSubmittingSubtasks).
		On(EventSubmitStructure).Target(StateSubmittingStructure).Guard("hasSelection").
		Done()

	builder.State(StateFailed).
		On(EventSubmitSubtasks).Target(StateSubmittingSubtasks).
		On(EventSubmitStructure).Target(StateSubmittingStructure).Guard("hasSelection").
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &workflowMachine{interpreter: interpreter}, nil
}

// send applies event and reports an error when the current state has no
// matching transition or its guard refused it.
func (m *workflowMachine) send(event string) error {
	before := m.current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.current() != before {
		return nil
	}
	return fmt.Errorf("%w: %q in state %q", ErrInvalidTransition, event, before)
}

func (m *workflowMachine) current() string {
	return string(m.interpreter.State().Value)
}

func (m *workflowMachine) loading() bool {
	switch m.current() {
	case StateSubmittingSubtasks, StateSubmittingStructure:
		return true
	}
	return false
}

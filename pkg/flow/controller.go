// Package flow implements the request flow behind every presentation: fetch
// subtasks for a description, toggle a selection over them, and fetch an
// overall structure for the selected subtasks.
package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
	"github.com/felixgeelhaar/taskforce/pkg/sdk"
)

// Backend is the decomposition service the controller talks to.
type Backend interface {
	GetSubtasks(ctx context.Context, description string) ([]task.Subtask, error)
	GetOverallStructure(ctx context.Context, selected []task.Subtask) ([]task.StructureStep, error)
}

// Controller owns the mutable state of one workflow. It is safe for
// concurrent use; at most one request is in flight at a time.
type Controller struct {
	backend Backend
	logger  *zap.Logger

	mu          sync.Mutex
	machine     *workflowMachine
	description string
	subtasks    []task.Subtask
	selection   task.Selection
	structure   []task.StructureStep
	errMsg      string

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for request lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewController(backend Backend, opts ...Option) (*Controller, error) {
	c := &Controller{
		backend: backend,
		logger:  zap.NewNop(),
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(c)
	}
	m, err := newWorkflowMachine(c.selection.Len)
	if err != nil {
		return nil, err
	}
	c.machine = m
	return c, nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// FetchSubtasks replaces the subtask list with the backend's decomposition
// of description. Request failures are recorded in the error slot and do not
// produce an error; only rejected preconditions do.
func (c *Controller) FetchSubtasks(ctx context.Context, description string) error {
	if err := task.ValidateDescription(description); err != nil {
		return err
	}

	c.mu.Lock()
	if c.machine.loading() {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.machine.send(EventSubmitSubtasks); err != nil {
		c.mu.Unlock()
		return err
	}
	c.description = description
	c.errMsg = ""
	c.mu.Unlock()
	c.publish()

	id := uuid.NewString()
	log := c.logger.With(zap.String("request_id", id), zap.String("op", "get_subtasks"))
	log.Debug("request started")

	subtasks, err := c.backend.GetSubtasks(sdk.ContextWithRequestID(ctx, id), description)

	c.mu.Lock()
	if err != nil {
		c.errMsg = Describe(err)
		_ = c.machine.send(EventFail)
		log.Warn("request failed", zap.Error(err))
	} else {
		c.subtasks = subtasks
		c.selection.Clear()
		c.structure = nil
		_ = c.machine.send(EventSubtasksLoaded)
		log.Debug("request finished", zap.Int("subtasks", len(subtasks)))
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

// ToggleSelection adds index to the selection, or removes it when present.
func (c *Controller) ToggleSelection(index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.subtasks) {
		n := len(c.subtasks)
		c.mu.Unlock()
		return fmt.Errorf("%w: %d (have %d subtasks)", ErrInvalidIndex, index, n)
	}
	c.selection.Toggle(index)
	c.mu.Unlock()
	c.publish()
	return nil
}

// FetchStructure requests an overall structure for the selected subtasks,
// sent in ascending index order. The selection survives a failed request.
func (c *Controller) FetchStructure(ctx context.Context) error {
	c.mu.Lock()
	if c.machine.loading() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.selection.Len() == 0 {
		c.mu.Unlock()
		return ErrEmptySelection
	}
	selected, err := task.Project(c.subtasks, c.selection.Indices())
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.machine.send(EventSubmitStructure); err != nil {
		c.mu.Unlock()
		return err
	}
	c.errMsg = ""
	c.mu.Unlock()
	c.publish()

	id := uuid.NewString()
	log := c.logger.With(zap.String("request_id", id), zap.String("op", "get_overall_structure"))
	log.Debug("request started", zap.Int("selected", len(selected)))

	steps, err := c.backend.GetOverallStructure(sdk.ContextWithRequestID(ctx, id), selected)

	c.mu.Lock()
	if err != nil {
		c.errMsg = Describe(err)
		_ = c.machine.send(EventFail)
		log.Warn("request failed", zap.Error(err))
	} else {
		c.structure = steps
		_ = c.machine.send(EventStructureLoaded)
		log.Debug("request finished", zap.Int("steps", len(steps)))
	}
	c.mu.Unlock()
	c.publish()
	return nil
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:       c.machine.current(),
		Description: c.description,
		Selected:    c.selection.Indices(),
		Error:       c.errMsg,
		Loading:     c.machine.loading(),
	}
	if c.subtasks != nil {
		s.Subtasks = append([]task.Subtask(nil), c.subtasks...)
	}
	if c.structure != nil {
		s.Structure = make([]task.StructureStep, len(c.structure))
		for i, step := range c.structure {
			step.Details = append([]string(nil), step.Details...)
			s.Structure[i] = step
		}
	}
	return s
}

func (c *Controller) publish() {
	snap := c.Snapshot()

	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

package web

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

// Intent types sent by the browser.
const (
	IntentSubmit    = "submit"
	IntentToggle    = "toggle"
	IntentStructure = "structure"
)

// Intent is a user action forwarded to the controller.
type Intent struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Index       int    `json:"index,omitempty"`
}

// Message is pushed to the browser. Snapshot messages carry the state to
// render; rejected messages explain why an intent was refused.
type Message struct {
	Type     string         `json:"type"`
	Snapshot *flow.Snapshot `json:"snapshot,omitempty"`
	Msg      string         `json:"msg,omitempty"`
}

const writeWait = 10 * time.Second

func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	out := make(chan Message, 16)
	unsubscribe := s.controller.Subscribe(func(snap flow.Snapshot) {
		select {
		case out <- Message{Type: "snapshot", Snapshot: &snap}:
		default:
			s.logger.Debug("dropping snapshot for slow client")
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	go s.writeLoop(conn, out, done)

	initial := s.controller.Snapshot()
	out <- Message{Type: "snapshot", Snapshot: &initial}

	for {
		var in Intent
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", zap.Error(err))
			}
			return nil
		}
		if msg := s.dispatch(in); msg != "" {
			select {
			case out <- Message{Type: "rejected", Msg: msg}:
			default:
			}
		}
	}
}

func (s *Server) writeLoop(conn *websocket.Conn, out <-chan Message, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

// dispatch applies an intent and returns a message when it was refused.
// Fetches run in the background so the socket keeps reading.
func (s *Server) dispatch(in Intent) string {
	switch in.Type {
	case IntentSubmit:
		snap := s.controller.Snapshot()
		if !snap.CanSubmit(in.Description) {
			return refusal(snap, flow.ErrEmptyDescription)
		}
		go s.run(func() error { return s.controller.FetchSubtasks(s.baseCtx, in.Description) })
	case IntentToggle:
		if err := s.controller.ToggleSelection(in.Index); err != nil {
			return err.Error()
		}
	case IntentStructure:
		snap := s.controller.Snapshot()
		if !snap.CanRequestStructure() {
			return refusal(snap, flow.ErrEmptySelection)
		}
		go s.run(func() error { return s.controller.FetchStructure(s.baseCtx) })
	default:
		return "unknown intent " + in.Type
	}
	return ""
}

func refusal(snap flow.Snapshot, fallback error) string {
	if snap.Loading {
		return flow.ErrBusy.Error()
	}
	return fallback.Error()
}

func (s *Server) run(fn func() error) {
	if err := fn(); err != nil {
		// Lost a race with another tab; the controller state is unchanged.
		if errors.Is(err, flow.ErrBusy) || errors.Is(err, task.ErrEmptyDescription) || errors.Is(err, task.ErrNoSubtasks) {
			s.logger.Debug("intent rejected", zap.Error(err))
			return
		}
		s.logger.Warn("intent failed", zap.Error(err))
	}
}

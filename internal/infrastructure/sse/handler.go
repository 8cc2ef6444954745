// Package sse streams request flow snapshots as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

// Source publishes snapshots. *flow.Controller satisfies it.
type Source interface {
	Snapshot() flow.Snapshot
	Subscribe(fn func(flow.Snapshot)) func()
}

// Handler streams the current snapshot followed by every change.
type Handler struct {
	source Source
	seq    atomic.Uint64
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan flow.Snapshot, 16)
	unsubscribe := h.source.Subscribe(func(s flow.Snapshot) {
		select {
		case ch <- s:
		default:
			// Drop if client is slow; the next snapshot supersedes it.
		}
	})
	defer unsubscribe()

	if err := h.write(w, h.source.Snapshot()); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-ch:
			if err := h.write(w, snap); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Handler) write(w http.ResponseWriter, snap flow.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", h.seq.Add(1), data)
	return err
}

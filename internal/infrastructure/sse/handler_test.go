package sse_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/sse"
	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

type staticBackend struct{}

func (staticBackend) GetSubtasks(context.Context, string) ([]task.Subtask, error) {
	return []task.Subtask{{Description: "Choose a venue", TimeEstimate: "30 minutes"}}, nil
}

func (staticBackend) GetOverallStructure(context.Context, []task.Subtask) ([]task.StructureStep, error) {
	return nil, nil
}

func readSnapshot(t *testing.T, r *bufio.Reader) flow.Snapshot {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var s flow.Snapshot
			if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &s); err != nil {
				t.Fatalf("decode snapshot: %v", err)
			}
			return s
		}
	}
}

func TestHandler_StreamsSnapshots(t *testing.T) {
	c, err := flow.NewController(staticBackend{})
	if err != nil {
		t.Fatal(err)
	}
	server := httptest.NewServer(sse.NewHandler(c))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Content-Type") != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", resp.Header.Get("Content-Type"))
	}

	reader := bufio.NewReader(resp.Body)
	if first := readSnapshot(t, reader); first.State != flow.StateIdle {
		t.Fatalf("expected initial idle snapshot, got %q", first.State)
	}

	go func() { _ = c.FetchSubtasks(context.Background(), "Plan a birthday party") }()

	for {
		s := readSnapshot(t, reader)
		if s.State == flow.StateHasSubtasks {
			if len(s.Subtasks) != 1 {
				t.Fatalf("unexpected subtasks %+v", s.Subtasks)
			}
			return
		}
	}
}

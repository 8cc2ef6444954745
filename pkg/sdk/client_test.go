package sdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
	"github.com/felixgeelhaar/taskforce/pkg/sdk"
)

func TestGetSubtasks_Success(t *testing.T) {
	var gotBody task.DescriptionRequest
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != sdk.PathSubtasks {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		gotID = r.Header.Get(sdk.RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[{"description":"Choose a venue","time_estimate":"30 minutes"},{"description":"Send invitations","time_estimate":"20 minutes"}]`))
	}))
	defer srv.Close()

	c := sdk.NewClient(srv.URL+"/", sdk.WithRequestIDGenerator(func() string { return "req-1" }))
	got, err := c.GetSubtasks(context.Background(), "Plan a birthday party")
	if err != nil {
		t.Fatalf("GetSubtasks: %v", err)
	}
	if gotBody.Description != "Plan a birthday party" {
		t.Fatalf("unexpected body %+v", gotBody)
	}
	if gotID != "req-1" {
		t.Fatalf("expected generated request id, got %q", gotID)
	}
	want := []task.Subtask{
		{Description: "Choose a venue", TimeEstimate: "30 minutes"},
		{Description: "Send invitations", TimeEstimate: "20 minutes"},
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestGetOverallStructure_SendsSelection(t *testing.T) {
	var gotBody map[string][]task.Subtask
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != sdk.PathStructure {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotID = r.Header.Get(sdk.RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`[{"step":"Send invites","details":["Draft list","Mail"],"time_estimate":"20 minutes"}]`))
	}))
	defer srv.Close()

	c := sdk.NewClient(srv.URL)
	ctx := sdk.ContextWithRequestID(context.Background(), "abc")
	steps, err := c.GetOverallStructure(ctx, []task.Subtask{{Description: "Send invitations", TimeEstimate: "20 minutes"}})
	if err != nil {
		t.Fatalf("GetOverallStructure: %v", err)
	}
	if gotID != "abc" {
		t.Fatalf("expected context request id, got %q", gotID)
	}
	sel := gotBody["selected_subtasks"]
	if len(sel) != 1 || sel[0].Description != "Send invitations" {
		t.Fatalf("unexpected selection %+v", gotBody)
	}
	if len(steps) != 1 || steps[0].Step != "Send invites" || len(steps[0].Details) != 2 {
		t.Fatalf("unexpected steps %+v", steps)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantMsg   string
		server    bool
		transport bool
	}{
		{name: "msg", status: 400, body: `{"msg":"description too short"}`, wantMsg: "description too short", server: true},
		{name: "json without msg", status: 500, body: `{"detail":"boom"}`, server: true},
		{name: "non string msg", status: 500, body: `{"msg":42}`, server: true},
		{name: "empty error body", status: 502, body: "", transport: true},
		{name: "html error body", status: 502, body: "<html>bad gateway</html>", transport: true},
		{name: "undecodable success", status: 200, body: `{"not":"an array"}`, transport: true},
		{name: "empty success", status: 200, body: "  ", transport: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := sdk.NewClient(srv.URL).GetSubtasks(context.Background(), "x")
			if err == nil {
				t.Fatal("expected error")
			}
			var se *sdk.ServerError
			var te *sdk.TransportError
			if tt.server {
				if !errors.As(err, &se) {
					t.Fatalf("expected ServerError, got %T %v", err, err)
				}
				if se.Msg != tt.wantMsg || se.StatusCode != tt.status {
					t.Fatalf("unexpected server error %+v", se)
				}
			}
			if tt.transport {
				if !errors.As(err, &te) {
					t.Fatalf("expected TransportError, got %T %v", err, err)
				}
				if te.StatusCode != tt.status {
					t.Fatalf("expected status %d, got %d", tt.status, te.StatusCode)
				}
			}
		})
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := sdk.NewClient(url).GetSubtasks(context.Background(), "x")
	var te *sdk.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if te.StatusCode != 0 {
		t.Fatalf("expected no status, got %d", te.StatusCode)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := sdk.NewClient(srv.URL, sdk.WithTimeout(50*time.Millisecond))
	if c.Timeout() != 50*time.Millisecond {
		t.Fatalf("unexpected timeout %v", c.Timeout())
	}
	_, err := c.GetSubtasks(context.Background(), "x")
	var te *sdk.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError on timeout, got %T %v", err, err)
	}
}

func TestClient_InvalidBaseURL(t *testing.T) {
	_, err := sdk.NewClient("://bad").GetSubtasks(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var te *sdk.TransportError
	if errors.As(err, &te) {
		t.Fatalf("request build failure should not be a transport error: %v", err)
	}
}

func TestErrorStrings(t *testing.T) {
	if got := (&sdk.ServerError{StatusCode: 400, Msg: "nope"}).Error(); got != "taskforce: server returned status 400: nope" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (&sdk.ServerError{StatusCode: 500}).Error(); got != "taskforce: server returned status 500" {
		t.Fatalf("unexpected %q", got)
	}
	te := &sdk.TransportError{Err: sdk.ErrEmptyBody}
	if !errors.Is(te, sdk.ErrEmptyBody) {
		t.Fatal("TransportError should unwrap")
	}
}

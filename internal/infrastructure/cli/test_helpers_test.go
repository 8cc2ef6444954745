package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

// fakeBackend serves canned responses for the two decomposition endpoints.
type fakeBackend struct {
	subtasks []task.Subtask
	steps    []task.StructureStep
	failMsg  string

	mu          sync.Mutex
	description string
	selected    []task.Subtask
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if b.failMsg != "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(task.ErrorBody{Msg: b.failMsg})
		return
	}
	switch r.URL.Path {
	case "/get_subtasks":
		var req task.DescriptionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.description = req.Description
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.subtasks)
	case "/get_overall_structure":
		var req task.SelectionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		b.selected = req.SelectedSubtasks
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.steps)
	default:
		http.NotFound(w, r)
	}
}

func (b *fakeBackend) gotDescription() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.description
}

func (b *fakeBackend) gotSelected() []task.Subtask {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

func partySubtasks() []task.Subtask {
	return []task.Subtask{
		{Description: "Choose a venue", TimeEstimate: "30 minutes"},
		{Description: "Send invitations", TimeEstimate: "1 hour"},
		{Description: "Order a cake", TimeEstimate: "15 minutes"},
	}
}

// useBackend points the shared command state at an httptest server running b.
func useBackend(t *testing.T, b *fakeBackend) {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Backend.URL = srv.URL
	oldCfg, oldLogger := appState.cfg, appState.logger
	appState.cfg = cfg
	appState.logger = zap.NewNop()
	t.Cleanup(func() {
		appState.cfg = oldCfg
		appState.logger = oldLogger
	})

	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })
}

// runCmd invokes cmd's RunE with output captured and stdin set to in.
func runCmd(t *testing.T, cmd *cobra.Command, in string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(in))
	cmd.SetContext(context.Background())
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
		cmd.SetIn(nil)
	})
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// setFlag sets a flag the way the command line would and resets it afterwards.
func setFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	f := cmd.Flags().Lookup(name)
	if f == nil {
		t.Fatalf("unknown flag %s", name)
	}
	def := f.DefValue
	if err := cmd.Flags().Set(name, value); err != nil {
		t.Fatalf("set %s: %v", name, err)
	}
	t.Cleanup(func() {
		_ = f.Value.Set(def)
		f.Changed = false
	})
}

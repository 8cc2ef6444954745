package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	oldPath, oldBackend, oldLevel, oldFormat := configPath, backendURL, logLevel, logFormat
	t.Cleanup(func() {
		configPath, backendURL, logLevel, logFormat = oldPath, oldBackend, oldLevel, oldFormat
	})
	configPath, backendURL, logLevel, logFormat = "", "", "", ""
	return dir
}

func TestLoadState_FlagOverrides(t *testing.T) {
	isolate(t)
	backendURL = "http://backend.test:9000"
	logLevel = "debug"

	if err := loadState(RootCmd); err != nil {
		t.Fatalf("loadState: %v", err)
	}
	if appState.cfg.Backend.URL != "http://backend.test:9000" {
		t.Fatalf("backend override not applied: %s", appState.cfg.Backend.URL)
	}
	if appState.cfg.Log.Level != "debug" {
		t.Fatalf("log level override not applied: %s", appState.cfg.Log.Level)
	}
	if appState.logger == nil {
		t.Fatal("expected a logger")
	}
}

func TestLoadState_InvalidOverride(t *testing.T) {
	isolate(t)
	logLevel = "loud"

	if err := loadState(RootCmd); err == nil {
		t.Fatal("expected invalid log level to be rejected")
	}
}

func TestLoadState_MissingExplicitConfig(t *testing.T) {
	dir := isolate(t)
	configPath = filepath.Join(dir, "missing.yaml")

	if err := loadState(RootCmd); err == nil {
		t.Fatal("expected an error for a missing --config file")
	}
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	out, err := runCmd(t, configInitCmd, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, config.FileName) {
		t.Fatalf("unexpected output %q", out)
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Backend.URL != config.Default().Backend.URL {
		t.Fatalf("unexpected backend url %s", cfg.Backend.URL)
	}

	if _, err := runCmd(t, configInitCmd, ""); err == nil {
		t.Fatal("expected second init without --force to fail")
	}

	setFlag(t, configInitCmd, "force", "true")
	if _, err := runCmd(t, configInitCmd, ""); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(config.FileName, []byte("backend:\n  url: http://example.test\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := loadState(RootCmd); err != nil {
		t.Fatalf("loadState: %v", err)
	}

	out, err := runCmd(t, configShowCmd, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "url: http://example.test") {
		t.Fatalf("expected file value in output:\n%s", out)
	}
	if !strings.Contains(out, "provider: openai") {
		t.Fatalf("expected defaults in output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, versionCmd, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "taskforce "+Version) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	want := []string{"subtasks", "plan", "tui", "web", "serve", "mcp", "config", "version", "completion"}
	for _, name := range want {
		cmd, _, err := RootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %s not registered", name)
		}
	}
}

func TestWatchedConfigPath(t *testing.T) {
	isolate(t)
	if got := watchedConfigPath(); got != config.FileName {
		t.Fatalf("default watch path %q", got)
	}
	configPath = "/etc/taskforce.yaml"
	if got := watchedConfigPath(); got != "/etc/taskforce.yaml" {
		t.Fatalf("explicit watch path %q", got)
	}
}

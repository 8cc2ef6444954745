package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskforce/internal/infrastructure/logging"
	inframcp "github.com/felixgeelhaar/taskforce/internal/infrastructure/mcp"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	backendURL string
	logLevel   string
	logFormat  string
)

// appState is filled by the root PersistentPreRunE before any command runs.
var appState struct {
	cfg    *config.Config
	logger *zap.Logger
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "taskforce",
	Version: Version,
	Short:   "Break tasks into subtasks and plan the ones you pick",
	Long: `Taskforce turns a task description into estimated subtasks, lets you
select the ones you want to do, and builds an overall step-by-step plan
for the selection.

Run 'taskforce serve' to start the backend, then use 'taskforce tui',
'taskforce web' or 'taskforce plan' to work with it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadState(cmd)
	},
}

func loadState(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	appState.cfg = cfg
	appState.logger = logger
	return nil
}

// Execute runs the root command and prints mapped errors with their hints.
func Execute() error {
	err := RootCmd.Execute()
	if err == nil {
		return nil
	}
	err = MapError(err)
	printError(os.Stderr, err)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: ./taskforce.yaml or ~/.config/taskforce/taskforce.yaml)")
	RootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend service URL (overrides backend.url)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")

	RootCmd.SetVersionTemplate(fmt.Sprintf("taskforce {{.Version}} (commit %s, built %s)\n", Commit, Date))
	inframcp.Version = Version
	inframcp.BuildCommit = Commit
	inframcp.BuildDate = Date

	color.NoColor = color.NoColor || os.Getenv("NO_COLOR") != ""
}

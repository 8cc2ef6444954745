package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/api"
	"github.com/felixgeelhaar/taskforce/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskforce/internal/infrastructure/watch"
	"github.com/felixgeelhaar/taskforce/internal/infrastructure/wiring"
)

var (
	serveAddr     string
	serveWatch    bool
	serveDebounce time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the decomposition backend service",
	Long: `Serve starts the HTTP backend exposing POST /get_subtasks and
POST /get_overall_structure, backed by the configured AI provider.

With --watch the config file is watched and the AI provider is rebuilt
whenever it changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appState.cfg
		logger := appState.logger.Named("serve")
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		svc, err := wiring.BuildDecomposeService(cfg, logger)
		if err != nil {
			return NewCLIError("failed to initialise AI provider", "Check ai.provider in your config or set TASKFORCE_AI_PROVIDER=mock", err)
		}
		server := api.NewServer(api.Config{
			Addr:           cfg.Server.Addr,
			AllowedOrigins: cfg.Server.AllowedOrigins,
		}, svc, logger)

		ctx, stop := interruptible(cmd.Context())
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return server.Run(gctx) })

		if serveWatch {
			path := watchedConfigPath()
			watcher, err := watch.NewFileWatcher(path, serveDebounce, func(ev watch.ChangeEvent) {
				reloadDecomposer(path, server, logger)
			}, logger)
			if err != nil {
				return fmt.Errorf("watch config: %w", err)
			}
			g.Go(func() error {
				if err := watcher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes\n", watcher.Path())
		}

		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s backend on %s\n", color.GreenString("Serving"), cfg.Server.Addr)
		return g.Wait()
	},
}

func watchedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.FileName
}

// reloadDecomposer rebuilds the decomposition service from the config file at
// path and swaps it into server. A bad config keeps the running service.
func reloadDecomposer(path string, server *api.Server, logger *zap.Logger) {
	cfg, err := config.Load(path)
	if err != nil {
		logger.Warn("config reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	svc, err := wiring.BuildDecomposeService(cfg, logger)
	if err != nil {
		logger.Warn("provider reload failed", zap.Error(err))
		return
	}
	server.SetDecomposer(svc)
	logger.Info("config reloaded", zap.String("provider", cfg.AI.Provider), zap.String("model", cfg.AI.Model))
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the AI provider when the config file changes")
	serveCmd.Flags().DurationVar(&serveDebounce, "debounce", 500*time.Millisecond, "Debounce window for config changes")
	RootCmd.AddCommand(serveCmd)
}

// interruptible returns a context cancelled on SIGINT or SIGTERM.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

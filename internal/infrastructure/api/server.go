// Package api serves the decomposition endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/logging"
	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

// Decomposer produces subtasks and structures. *application.DecomposeService
// satisfies it.
type Decomposer interface {
	GetSubtasks(ctx context.Context, description string) ([]task.Subtask, error)
	GetOverallStructure(ctx context.Context, selected []task.Subtask) ([]task.StructureStep, error)
}

type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server is the backend HTTP service.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger

	mu  sync.RWMutex
	svc Decomposer
}

func NewServer(cfg Config, svc Decomposer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	s := &Server{echo: e, addr: cfg.Addr, logger: logger, svc: svc}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/get_subtasks", s.handleGetSubtasks)
	s.echo.POST("/get_overall_structure", s.handleGetOverallStructure)
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// SetDecomposer swaps the service used by subsequent requests.
func (s *Server) SetDecomposer(svc Decomposer) {
	s.mu.Lock()
	s.svc = svc
	s.mu.Unlock()
}

func (s *Server) decomposer() Decomposer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("backend listening", zap.String("addr", s.addr))
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("backend stopped")
		return nil
	}
}

// Package web serves the browser presentation of a request flow.
package web

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/logging"
	"github.com/felixgeelhaar/taskforce/internal/infrastructure/sse"
	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

//go:embed static/index.html
var staticFS embed.FS

// Controller is the request flow driven by browser intents.
type Controller interface {
	Snapshot() flow.Snapshot
	Subscribe(fn func(flow.Snapshot)) func()
	FetchSubtasks(ctx context.Context, description string) error
	ToggleSelection(index int) error
	FetchStructure(ctx context.Context) error
}

type Server struct {
	echo       *echo.Echo
	addr       string
	controller Controller
	logger     *zap.Logger
	upgrader   websocket.Upgrader

	// baseCtx bounds requests started from intents so they outlive the socket
	// that sent them.
	baseCtx context.Context
}

func NewServer(addr string, controller Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(logging.RequestLogger(logger))

	s := &Server{
		echo:       e,
		addr:       addr,
		controller: controller,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		baseCtx: context.Background(),
	}

	e.GET("/", s.handleIndex)
	e.GET("/api/state", s.handleState)
	e.GET("/events", echo.WrapHandler(sse.NewHandler(controller)))
	e.GET("/ws", s.handleWebSocket)
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.baseCtx = ctx
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web UI listening", zap.String("addr", s.addr))
		errCh <- s.echo.Start(s.addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, data)
}

func (s *Server) handleState(c echo.Context) error {
	return c.JSON(http.StatusOK, s.controller.Snapshot())
}

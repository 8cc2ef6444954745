package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/pkg/application"
	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSubtasks(c echo.Context) error {
	var req task.DescriptionRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	subtasks, err := s.decomposer().GetSubtasks(c.Request().Context(), req.Description)
	if err != nil {
		return err
	}
	if subtasks == nil {
		subtasks = []task.Subtask{}
	}
	return c.JSON(http.StatusOK, subtasks)
}

func (s *Server) handleGetOverallStructure(c echo.Context) error {
	var req task.SelectionRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	steps, err := s.decomposer().GetOverallStructure(c.Request().Context(), req.SelectedSubtasks)
	if err != nil {
		return err
	}
	if steps == nil {
		steps = []task.StructureStep{}
	}
	return c.JSON(http.StatusOK, steps)
}

type requestError struct{ err error }

func (e *requestError) Error() string { return "invalid request body: " + e.err.Error() }

func decodeBody(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(v); err != nil {
		return &requestError{err: err}
	}
	return nil
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var limitErr *application.TokenLimitError
	var reqErr *requestError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &limitErr):
		return http.StatusBadRequest
	case errors.As(err, &reqErr),
		errors.Is(err, task.ErrEmptyDescription),
		errors.Is(err, task.ErrNoSubtasks):
		return http.StatusUnprocessableEntity
	case errors.As(err, &httpErr):
		return httpErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders every failure as {"msg": ...}.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := statusFor(err)
		msg := err.Error()
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg = fmt.Sprint(httpErr.Message)
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		if jerr := c.JSON(status, task.ErrorBody{Msg: msg}); jerr != nil {
			logger.Warn("failed to write error response", zap.Error(jerr))
		}
	}
}

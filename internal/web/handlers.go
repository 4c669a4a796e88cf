package web

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/api"
	"taskboard/internal/domain"
	"taskboard/internal/errors"
)

type taskHandler func(c echo.Context, tasks api.API) error

type fallbackHandler func(c echo.Context, err error) error

// withTasks acquires a storage session for the request, applies the query
// deadline and hands an API bound to that session to h. The session is
// released on every path. If no session can be had, fallback answers.
func (s *Server) withTasks(h taskHandler, fallback fallbackHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if timeout := s.cfg.Database.QueryTimeout; timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
		}

		session, err := s.store.Acquire(ctx)
		if err != nil {
			return fallback(c, err)
		}
		defer func() {
			if cerr := session.Close(); cerr != nil {
				s.entry(c).WithError(cerr).Warn("release storage session")
			}
		}()

		tasks := api.New(session, api.WithTitleMaxLength(s.cfg.Validation.TitleMaxLength))
		return h(c, tasks)
	}
}

func (s *Server) index(c echo.Context, tasks api.API) error {
	board, err := tasks.Board(c.Request().Context())
	if err != nil {
		return s.emptyBoard(c, err)
	}
	return c.Render(http.StatusOK, indexTemplate, newIndexPage(board))
}

// emptyBoard still renders the page when storage fails, with no tasks.
func (s *Server) emptyBoard(c echo.Context, err error) error {
	s.logFailure(c, "load board", err)
	return c.Render(http.StatusOK, indexTemplate, newIndexPage(&domain.Board{}))
}

func (s *Server) addTask(c echo.Context, tasks api.API) error {
	_, err := tasks.CreateTask(c.Request().Context(), c.FormValue("title"))
	return s.redirectAfter("create")(c, err)
}

func (s *Server) toggleTask(c echo.Context, tasks api.API) error {
	id, err := s.taskID(c)
	if err == nil {
		_, err = tasks.ToggleTask(c.Request().Context(), id)
	}
	return s.redirectAfter("toggle")(c, err)
}

func (s *Server) updateStatus(c echo.Context, tasks api.API) error {
	id, err := s.taskID(c)
	if err == nil {
		_, err = tasks.UpdateTaskStatus(c.Request().Context(), id, formStatus(c))
	}
	return s.redirectAfter("update_status")(c, err)
}

// formStatus returns the status field of the posted form. A form without the
// field asks for todo; a body that cannot be parsed yields "", which no
// status matches.
func formStatus(c echo.Context) string {
	if _, err := c.FormParams(); err != nil {
		return ""
	}
	values, ok := c.Request().PostForm["status"]
	if !ok || len(values) == 0 {
		return string(domain.StatusTodo)
	}
	return values[0]
}

func (s *Server) deleteTask(c echo.Context, tasks api.API) error {
	id, err := s.taskID(c)
	if err == nil {
		err = tasks.DeleteTask(c.Request().Context(), id)
	}
	return s.redirectAfter("delete")(c, err)
}

// taskID reads the :id path parameter. An id that is not a positive integer
// is rejected before any storage call.
func (s *Server) taskID(c echo.Context) (int64, error) {
	raw := c.Param("id")
	id, err := s.validator.ParseTaskID(raw)
	if err != nil {
		return 0, errors.NewInvalidInputError("task_id", raw, "must be a positive integer")
	}
	return id, nil
}

// redirectAfter records the outcome of a mutation and sends the browser back
// to the board. Form routes redirect whatever happened.
func (s *Server) redirectAfter(operation string) fallbackHandler {
	return func(c echo.Context, err error) error {
		s.metrics.RecordMutation(operation, outcome(err))
		if err != nil {
			s.logFailure(c, operation, err)
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) apiStats(c echo.Context, tasks api.API) error {
	stats, err := tasks.Stats(c.Request().Context())
	if err != nil {
		return s.statsUnavailable(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) statsUnavailable(c echo.Context, err error) error {
	s.logFailure(c, "stats", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: errors.GetUserMessage(err)})
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) healthz(c echo.Context) error {
	ctx := c.Request().Context()
	if timeout := s.cfg.Database.QueryTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := s.store.Ping(ctx); err != nil {
		s.logFailure(c, "health check", err)
		return c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status: "unavailable",
			Error:  errors.GetUserMessage(err),
		})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// logFailure logs storage and other unexpected errors at error level. User
// errors such as a blank title or a missing id only show up in debug logs.
func (s *Server) logFailure(c echo.Context, operation string, err error) {
	entry := s.entry(c).WithFields(log.Fields{
		"operation":  operation,
		"error_code": errors.GetErrorCode(err),
	}).WithError(err)
	if appErr, ok := errors.AsAppError(err); ok {
		entry = entry.WithFields(appErr.Fields())
	}

	if errors.ShouldLogError(err) {
		entry.Error("request operation failed")
		return
	}
	entry.Debug("request input ignored")
}

func (s *Server) entry(c echo.Context) *log.Entry {
	return s.logger.WithFields(log.Fields{
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		"route":      c.Path(),
	})
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Type.String()
	}
	return "error"
}

package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"taskboard/internal/config"
	"taskboard/internal/repository/sqlite"
	"taskboard/internal/validation"
)

// Store is the storage the server needs: a per-request session and a
// liveness check.
type Store interface {
	Acquire(ctx context.Context) (sqlite.Session, error)
	Ping(ctx context.Context) error
}

// Server serves the task board over HTTP.
type Server struct {
	echo      *echo.Echo
	store     Store
	cfg       *config.Config
	logger    *log.Logger
	metrics   *Metrics
	validator *validation.TaskValidator
}

// New builds the echo instance and registers every route.
func New(store Store, cfg *config.Config, logger *log.Logger) (*Server, error) {
	renderer, err := newTemplateRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.JSONSerializer = sonicSerializer{}
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	s := &Server{
		echo:      e,
		store:     store,
		cfg:       cfg,
		logger:    logger,
		metrics:   NewMetrics(),
		validator: validation.NewTaskValidatorWithMaxLength(cfg.Validation.TitleMaxLength),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(logger))
	e.Use(s.metrics.Middleware())

	s.register(e)
	return s, nil
}

func (s *Server) register(e *echo.Echo) {
	e.GET("/", s.withTasks(s.index, s.emptyBoard))
	e.POST("/add", s.withTasks(s.addTask, s.redirectAfter("create")))
	e.POST("/toggle/:id", s.withTasks(s.toggleTask, s.redirectAfter("toggle")))
	e.POST("/update_status/:id", s.withTasks(s.updateStatus, s.redirectAfter("update_status")))
	e.POST("/delete/:id", s.withTasks(s.deleteTask, s.redirectAfter("delete")))
	e.GET("/api/stats", s.withTasks(s.apiStats, s.statsUnavailable))

	e.GET("/healthz", s.healthz)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// ServeHTTP lets the server be driven directly, as in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run listens on the configured port until ctx is cancelled, then shuts
// down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.cfg.Address()).Info("http server listening")
		errCh <- s.echo.Start(s.cfg.Address())
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": float64(v.Latency.Microseconds()) / 1000,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

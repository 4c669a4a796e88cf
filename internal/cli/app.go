package cli

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/config"
	"taskboard/internal/repository/sqlite"
)

// App carries what every command needs: configuration, a logger and where
// to write its output.
type App struct {
	config       *config.Config
	logger       *log.Logger
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewApp creates a new CLI application instance
func NewApp(cfg *config.Config, logger *log.Logger, out io.Writer) *App {
	return &App{
		config:       cfg,
		logger:       logger,
		out:          out,
		errorHandler: NewErrorHandler(),
	}
}

// openStore opens the configured database and applies pending migrations.
// When strict is false a migration failure is logged and the store is
// returned anyway, so the caller keeps running on the existing schema.
func (a *App) openStore(ctx context.Context, strict bool) (*sqlite.Store, []int, error) {
	store, err := sqlite.Open(ctx, a.config.Database.Path, a.logger)
	if err != nil {
		return nil, nil, a.errorHandler.Handle("open database", err)
	}

	applied, err := store.Migrate(ctx)
	if err != nil {
		if strict {
			store.Close()
			return nil, applied, a.errorHandler.Handle("migrate database", err)
		}
		a.logger.WithError(err).WithField("db_path", a.config.Database.Path).
			Error("schema migration failed; continuing with the existing schema")
	}

	return store, applied, nil
}

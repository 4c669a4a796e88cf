package cli

import (
	"context"
	"os/signal"
	"syscall"

	"taskboard/internal/web"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	app *App
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app}
}

// Execute runs the HTTP server until SIGINT, SIGTERM or ctx cancellation
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, applied, err := c.app.openStore(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(applied) > 0 {
		c.app.logger.WithField("versions", applied).Info("applied schema migrations")
	}

	srv, err := web.New(store, c.app.config, c.app.logger)
	if err != nil {
		return c.app.errorHandler.Handle("build http server", err)
	}

	if err := srv.Run(ctx); err != nil {
		return c.app.errorHandler.Handle("serve http", err)
	}
	c.app.logger.Info("server stopped")
	return nil
}

package cli

import (
	"context"

	"github.com/bytedance/sonic"

	"taskboard/internal/api"
)

// StatsCommand handles the stats command
type StatsCommand struct {
	app *App
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(app *App) *StatsCommand {
	return &StatsCommand{app: app}
}

// Execute prints the task counts in the same JSON shape as /api/stats
func (c *StatsCommand) Execute(ctx context.Context, args []string) error {
	store, _, err := c.app.openStore(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	if timeout := c.app.config.Database.QueryTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	session, err := store.Acquire(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("read stats", err)
	}
	defer session.Close()

	stats, err := api.New(session).Stats(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("read stats", err)
	}

	return sonic.ConfigStd.NewEncoder(c.app.out).Encode(stats)
}

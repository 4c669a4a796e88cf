package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	app *App
}

// NewMigrateCommand creates a new migrate command handler
func NewMigrateCommand(app *App) *MigrateCommand {
	return &MigrateCommand{app: app}
}

// Execute applies pending migrations and reports what ran
func (c *MigrateCommand) Execute(ctx context.Context, args []string) error {
	store, applied, err := c.app.openStore(ctx, true)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(applied) == 0 {
		fmt.Fprintf(c.app.out, "%s is up to date\n", c.app.config.Database.Path)
		return nil
	}

	versions := make([]string, len(applied))
	for i, v := range applied {
		versions[i] = strconv.Itoa(v)
	}
	fmt.Fprintf(c.app.out, "applied migrations to %s: %s\n", c.app.config.Database.Path, strings.Join(versions, ", "))
	return nil
}

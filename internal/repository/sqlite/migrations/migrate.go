// Package migrations holds the ordered schema migrations for the task board
// database. Each migration registers itself from init and must be safe to run
// against a database that already has the change.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/errors"
)

// Migration is one versioned schema change, applied inside a transaction.
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, tx *sql.Tx) error
}

var registry = map[int]Migration{}

// Register adds a migration to the global list. Duplicate versions panic.
func Register(version int, name string, up func(ctx context.Context, tx *sql.Tx) error) {
	if _, exists := registry[version]; exists {
		panic(fmt.Sprintf("migration %d registered twice", version))
	}
	registry[version] = Migration{Version: version, Name: name, Up: up}
}

// All returns the registered migrations ordered by version.
func All() []Migration {
	migrations := make([]Migration, 0, len(registry))
	for _, m := range registry {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

// RunMigrations applies every registered migration that has not been applied yet.
func RunMigrations(ctx context.Context, db *sql.DB, logger *log.Logger) ([]int, error) {
	return Apply(ctx, db, All(), logger)
}

// Apply runs the pending migrations from the list in order and returns the
// versions it applied. It stops at the first failure; the failing migration
// is rolled back and earlier ones stay committed.
func Apply(ctx context.Context, db *sql.DB, migrations []Migration, logger *log.Logger) ([]int, error) {
	if err := createMigrationsTable(ctx, db); err != nil {
		return nil, errors.NewDatabaseError("create migrations table", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return nil, errors.NewDatabaseError("read applied migrations", err)
	}

	var versions []int
	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(ctx, db, migration); err != nil {
			return versions, errors.NewMigrationError(migration.Version, migration.Name, err)
		}
		logger.WithFields(log.Fields{
			"version": migration.Version,
			"name":    migration.Name,
		}).Info("applied migration")
		versions = append(versions, migration.Version)
	}

	return versions, nil
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := migration.Up(ctx, tx); err != nil {
		tx.Rollback()
		return err
	}

	appliedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (version, name, applied_at) VALUES (?, ?, ?)",
		migration.Version, migration.Name, appliedAt); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// hasColumn reports whether table has a column with the given name.
func hasColumn(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

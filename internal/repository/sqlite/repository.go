package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/errors"
	"taskboard/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// busyTimeoutMillis is how long a connection waits on a locked database
// before failing the statement.
const busyTimeoutMillis = 5000

// Repository defines the interface for task storage operations
type Repository interface {
	CreateTask(ctx context.Context, task *TaskRow) error
	GetTask(ctx context.Context, id int64) (*TaskRow, error)
	ListTasks(ctx context.Context) ([]*TaskRow, error)
	UpdateTaskStatus(ctx context.Context, id int64, status string, done bool) error
	DeleteTask(ctx context.Context, id int64) error
	CountTasksByStatus(ctx context.Context) ([]*StatusCount, error)
}

// Session is a Repository bound to one pooled connection. Close returns the
// connection to the pool and must be called on every path.
type Session interface {
	Repository
	Close() error
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db DBTX
}

// NewRepository creates a repository over any database handle
func NewRepository(db DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Store owns the connection pool for one SQLite database file.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open opens the SQLite database at dbPath and checks that a connection can
// be made. It does not migrate; call Migrate.
func Open(ctx context.Context, dbPath string, logger *log.Logger) (*Store, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", dbPath, busyTimeoutMillis)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	// sql.Open is lazy; connect now so a bad path fails here and not on the
	// first query.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("open database", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Migrate brings the schema up to date and returns the versions it applied.
func (s *Store) Migrate(ctx context.Context) ([]int, error) {
	return migrations.RunMigrations(ctx, s.db, s.logger)
}

// Acquire checks out a connection for the lifetime of one request.
func (s *Store) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("acquire connection", err)
	}
	return &connSession{SQLiteRepository: NewRepository(conn), conn: conn}, nil
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.NewDatabaseError("ping", err)
	}
	return nil
}

// Close closes the database connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

type connSession struct {
	*SQLiteRepository
	conn *sql.Conn
}

func (s *connSession) Close() error {
	return s.conn.Close()
}

// CreateTask inserts a new task and sets its ID
func (r *SQLiteRepository) CreateTask(ctx context.Context, task *TaskRow) error {
	query := `
	INSERT INTO tasks (title, done, status, created_at)
	VALUES (?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query, task.Title, task.Done, task.Status, task.CreatedAt)
	if err != nil {
		return err
	}

	task.ID = id
	return nil
}

// GetTask retrieves a task by ID
func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (*TaskRow, error) {
	query := `
	SELECT id, title, done, status, created_at
	FROM tasks
	WHERE id = ?`

	return QuerySingle(ctx, r.db, query, ScanTask, "task", fmt.Sprintf("%d", id), id)
}

// ListTasks retrieves all tasks, newest first
func (r *SQLiteRepository) ListTasks(ctx context.Context) ([]*TaskRow, error) {
	query := `
	SELECT id, title, done, status, created_at
	FROM tasks
	ORDER BY id DESC`

	return QueryMultiple(ctx, r.db, query, ScanTasks, "tasks")
}

// UpdateTaskStatus writes status and its done mirror in one statement
func (r *SQLiteRepository) UpdateTaskStatus(ctx context.Context, id int64, status string, done bool) error {
	query := `UPDATE tasks SET status = ?, done = ? WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "task", fmt.Sprintf("%d", id), status, done, id)
}

// DeleteTask deletes a task by ID
func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int64) error {
	query := `DELETE FROM tasks WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "task", fmt.Sprintf("%d", id), id)
}

// CountTasksByStatus returns row counts grouped by status and done flag.
// Grouping on done as well lets callers resolve rows with a missing status.
func (r *SQLiteRepository) CountTasksByStatus(ctx context.Context) ([]*StatusCount, error) {
	query := `
	SELECT status, done, COUNT(*)
	FROM tasks
	GROUP BY status, done`

	return QueryMultiple(ctx, r.db, query, ScanStatusCounts, "task counts")
}

package cli

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskboard/internal/config"
	"taskboard/internal/logging"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	config *config.Config
	logger *log.Logger
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand() *RootCommand {
	root := &RootCommand{}

	root.cmd = &cobra.Command{
		Use:   "taskboard",
		Short: "A small web board for personal tasks",
		Long: `taskboard serves a single-user task list backed by a SQLite file.

Tasks move between three states: todo, in_progress and done. The board
shows every task newest first together with per-status counts, and
/api/stats returns the same counts as JSON.

EXAMPLES:
  taskboard serve                          # Serve on :5000 using ./todo.db
  taskboard serve --port 8080 --db-path /var/lib/taskboard/tasks.db
  taskboard migrate                        # Bring the schema up to date
  taskboard stats                          # Print task counts as JSON

CONFIGURATION:
  Priority order: command-line flags > environment > .env file > config file > defaults

    TASKBOARD_DB_PATH                      Database file (default: todo.db)
    TASKBOARD_DB_QUERY_TIMEOUT             Per-request query deadline (default: 5s)
    TASKBOARD_PORT                         Listening port (default: 5000)
    TASKBOARD_READ_TIMEOUT                 HTTP read timeout (default: 10s)
    TASKBOARD_WRITE_TIMEOUT                HTTP write timeout (default: 10s)
    TASKBOARD_SHUTDOWN_TIMEOUT             Graceful shutdown limit (default: 10s)
    TASKBOARD_TITLE_MAX_LENGTH             Longest accepted title (default: 255)
    TASKBOARD_LOG_LEVEL                    debug, info, warn or error (default: info)
    TASKBOARD_LOG_FORMAT                   text or json (default: text)
    TASKBOARD_DEBUG                        Force debug logging when set`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// ExecuteContext runs the root command
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Path to a YAML config file")
	flags.String("db-path", "", "SQLite database file (overrides TASKBOARD_DB_PATH)")
	flags.Int("port", 0, "HTTP listening port (overrides TASKBOARD_PORT)")
	flags.String("log-level", "", "Log level (overrides TASKBOARD_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text or json (overrides TASKBOARD_LOG_FORMAT)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web board",
		Long: `Open the database, apply pending migrations and serve the board over HTTP.

A failed migration is logged and the server starts anyway with the schema it has.
SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewServeCommand(r.app(cmd)).Execute(cmd.Context(), args)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  "Apply pending schema migrations and report the versions applied. A failed migration exits non-zero.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewMigrateCommand(r.app(cmd)).Execute(cmd.Context(), args)
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print task counts as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewStatsCommand(r.app(cmd)).Execute(cmd.Context(), args)
		},
	}

	r.cmd.AddCommand(serveCmd, migrateCmd, statsCmd)
}

func (r *RootCommand) app(cmd *cobra.Command) *App {
	return NewApp(r.config, r.logger, cmd.OutOrStdout())
}

// loadConfig builds the configuration and logger before any command runs.
// Only flags the user actually set override lower layers.
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	overrides := &config.ConfigOverrides{}

	if flags.Changed("db-path") {
		v, _ := flags.GetString("db-path")
		overrides.DBPath = &v
	}
	if flags.Changed("port") {
		v, _ := flags.GetInt("port")
		overrides.Port = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		overrides.LogLevel = &v
	}
	if flags.Changed("log-format") {
		v, _ := flags.GetString("log-format")
		overrides.LogFormat = &v
	}

	configFile, _ := flags.GetString("config")
	cfg, err := config.NewLoader(configFile).LoadWithOverrides(overrides)
	if err != nil {
		return err
	}

	r.config = cfg
	r.logger = logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

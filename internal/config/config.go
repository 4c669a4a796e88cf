package config

import (
	"os"
	"strconv"
	"time"
)

// EnvPrefix namespaces every environment variable the application reads.
const EnvPrefix = "TASKBOARD_"

// Config holds all configuration options for the task board
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path         string        `yaml:"path" env:"TASKBOARD_DB_PATH"`
	QueryTimeout time.Duration `yaml:"query_timeout" env:"TASKBOARD_DB_QUERY_TIMEOUT"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" env:"TASKBOARD_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"TASKBOARD_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"TASKBOARD_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TASKBOARD_SHUTDOWN_TIMEOUT"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMaxLength int `yaml:"title_max_length" env:"TASKBOARD_TITLE_MAX_LENGTH"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"TASKBOARD_LOG_LEVEL"`
	Format string `yaml:"format" env:"TASKBOARD_LOG_FORMAT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "todo.db",
			QueryTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Validation: ValidationConfig{
			TitleMaxLength: 255,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// LoadFromEnvironment loads configuration from environment variables.
// Values that fail to parse are ignored and the previous value is kept.
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if path := os.Getenv(EnvPrefix + "DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if timeout := os.Getenv(EnvPrefix + "DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}

	// Server configuration
	if port := os.Getenv(EnvPrefix + "PORT"); port != "" {
		c.Server.Port = ParseIntWithFallback(port, c.Server.Port)
	}
	if timeout := os.Getenv(EnvPrefix + "READ_TIMEOUT"); timeout != "" {
		c.Server.ReadTimeout = ParseDurationWithFallback(timeout, c.Server.ReadTimeout)
	}
	if timeout := os.Getenv(EnvPrefix + "WRITE_TIMEOUT"); timeout != "" {
		c.Server.WriteTimeout = ParseDurationWithFallback(timeout, c.Server.WriteTimeout)
	}
	if timeout := os.Getenv(EnvPrefix + "SHUTDOWN_TIMEOUT"); timeout != "" {
		c.Server.ShutdownTimeout = ParseDurationWithFallback(timeout, c.Server.ShutdownTimeout)
	}

	// Validation configuration
	if maxLen := os.Getenv(EnvPrefix + "TITLE_MAX_LENGTH"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}

	// Logging configuration
	if level := os.Getenv(EnvPrefix + "LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv(EnvPrefix + "LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return &ConfigError{Field: "database.path", Message: "database path cannot be empty"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "port must be between 1 and 65535"}
	}
	if c.Server.ReadTimeout <= 0 {
		return &ConfigError{Field: "server.read_timeout", Message: "read timeout must be positive"}
	}
	if c.Server.WriteTimeout <= 0 {
		return &ConfigError{Field: "server.write_timeout", Message: "write timeout must be positive"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	if c.Validation.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config     *Config
	configFile string
	dotEnvFile string
}

// NewLoader creates a new configuration loader. configFile is an optional YAML
// file; an empty string skips it.
func NewLoader(configFile string) *Loader {
	return &Loader{
		config:     NewConfig(),
		configFile: configFile,
		dotEnvFile: ".env",
	}
}

// WithDotEnv changes the .env file consulted before reading the environment.
func (l *Loader) WithDotEnv(path string) *Loader {
	l.dotEnvFile = path
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file, if any
// 3. Populate the environment from .env (never overriding real variables)
// 4. Override with environment variables
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	// Re-validate after applying overrides
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) loadFile() error {
	if l.configFile == "" {
		return nil
	}
	data, err := os.ReadFile(l.configFile)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", l.configFile, err)
	}
	if err := yaml.Unmarshal(data, l.config); err != nil {
		return fmt.Errorf("decode config file %s: %w", l.configFile, err)
	}
	return nil
}

func (l *Loader) loadDotEnv() error {
	if l.dotEnvFile == "" {
		return nil
	}
	if err := godotenv.Load(l.dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", l.dotEnvFile, err)
	}
	return nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	DBPath    *string
	Port      *int
	LogLevel  *string
	LogFormat *string
}

// applyOverrides applies command line overrides to the configuration
func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.DBPath != nil {
		config.Database.Path = *overrides.DBPath
	}
	if overrides.Port != nil {
		config.Server.Port = *overrides.Port
	}
	if overrides.LogLevel != nil {
		config.Logging.Level = *overrides.LogLevel
	}
	if overrides.LogFormat != nil {
		config.Logging.Format = *overrides.LogFormat
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

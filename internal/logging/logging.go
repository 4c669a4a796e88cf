// Package logging builds the application's logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DebugEnv forces debug level logging when set to any non-empty value.
const DebugEnv = "TASKBOARD_DEBUG"

// Options controls logger construction.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// DebugEnabled returns true if debug mode is enabled via TASKBOARD_DEBUG
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// New returns a logger configured from opts. Unknown levels fall back to info
// and unknown formats fall back to text.
func New(opts Options) *log.Logger {
	logger := log.New()

	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	switch strings.ToLower(opts.Format) {
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if DebugEnabled() {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	return logger
}

// Discard returns a logger that drops everything. Used by tests and by
// callers that have no logger to hand.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Package logx builds the logrus logger used for diagnostics. User-facing
// output goes through package term; this logger is for what an operator
// needs when something misbehaves (executed commands, exit codes, timings).
package logx

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// EnvLevel names the environment variable consulted when no level is given.
const EnvLevel = "CLITE_LOG_LEVEL"

// DefaultLevel is used when neither a flag nor EnvLevel sets one.
const DefaultLevel = "warn"

// New returns a text logger writing to w at the given level. An empty level
// falls back to $CLITE_LOG_LEVEL, then DefaultLevel. An unparsable level is
// reported on the logger itself and replaced by DefaultLevel.
func New(w io.Writer, level string) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if strings.TrimSpace(level) == "" {
		level = os.Getenv(EnvLevel)
	}
	if strings.TrimSpace(level) == "" {
		level = DefaultLevel
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.SetLevel(log.WarnLevel)
		logger.Warnf("invalid log level %s, defaulting to %s", level, DefaultLevel)
		return logger
	}
	logger.SetLevel(lvl)
	return logger
}

// Discard returns a logger that drops everything. Handy as a zero value for
// components constructed without one.
func Discard() *log.Logger {
	logger := log.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(log.PanicLevel)
	return logger
}

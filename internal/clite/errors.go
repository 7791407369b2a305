package clite

import (
	"errors"
	"fmt"
	"strings"
)

// Process exit statuses returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitConfig  = 3
)

// ConfigError reports a tool definition that cannot be dispatched: duplicate
// or reserved names, a missing handler, or a defaults file that does not fit
// the tool. It is detected before any argument is parsed.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid tool configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) ExitCode() int { return ExitConfig }

// UsageError reports an argument vector that does not fit the descriptor:
// unknown flag or command, malformed or missing value.
type UsageError struct {
	Message    string
	Suggestion string
}

func (e *UsageError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (did you mean %s?)", e.Message, e.Suggestion)
	}
	return e.Message
}

func (e *UsageError) ExitCode() int { return ExitUsage }

func usageErrorf(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// CommandError wraps the failure of the invoked command, whether it
// returned an error or panicked.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string { return e.Err.Error() }

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode is ExitFailure unless the cause carries its own non-zero code,
// e.g. the status of a failed child process.
func (e *CommandError) ExitCode() int {
	var ec interface{ ExitCode() int }
	if errors.As(e.Err, &ec) {
		if c := ec.ExitCode(); c != 0 {
			return c
		}
	}
	return ExitFailure
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ec interface{ ExitCode() int }
	if errors.As(err, &ec) {
		if c := ec.ExitCode(); c != 0 {
			return c
		}
	}
	return ExitFailure
}

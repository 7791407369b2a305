package shell

import (
	"fmt"
	"sort"
	"strings"
)

// ExitError reports a command that exited with a non-zero status or was
// killed by its timeout.
type ExitError struct {
	Command  string
	Code     int
	Stderr   []byte
	TimedOut bool
}

func (e *ExitError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("command %q timed out", e.Command)
	}
	msg := fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// ExitCode returns the child's status so a failing command propagates it as
// the process exit code.
func (e *ExitError) ExitCode() int { return e.Code }

func lastLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

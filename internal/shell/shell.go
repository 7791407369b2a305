// Package shell runs external commands for tool scripts: command lines with
// quoting and pipes, captured or streamed output, timeouts that take the whole
// process group down, background children, retries and path helpers.
//
// A Shell is an explicit value. Build one per process and pass it around;
// its working directory and environment overlay apply to every command it
// creates.
package shell

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thellimist/clite/internal/logx"
	"github.com/thellimist/clite/internal/nameutil"
	"github.com/thellimist/clite/internal/term"
)

// DefaultKillGrace is how long a command gets between SIGTERM and SIGKILL.
const DefaultKillGrace = 3 * time.Second

// Shell carries the state shared by the commands it creates.
type Shell struct {
	mu           sync.RWMutex
	dir          string
	env          map[string]string
	printCommand bool

	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	term      *term.Logger
	logger    *log.Logger
	killGrace time.Duration
}

// Option configures a Shell.
type Option func(*Shell)

// WithDir sets the initial working directory.
func WithDir(dir string) Option {
	return func(s *Shell) { s.dir = dir }
}

// WithEnv adds variables to the environment of every command.
func WithEnv(env map[string]string) Option {
	return func(s *Shell) { maps.Copy(s.env, env) }
}

// WithOutput sets where streamed command output goes.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Shell) { s.stdout, s.stderr = stdout, stderr }
}

// WithStdin sets the input of commands that do not set their own.
func WithStdin(r io.Reader) Option {
	return func(s *Shell) { s.stdin = r }
}

// WithTerm sets the logger used to echo commands.
func WithTerm(t *term.Logger) Option {
	return func(s *Shell) { s.term = t }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithPrintCommand echoes every command before it runs.
func WithPrintCommand(on bool) Option {
	return func(s *Shell) { s.printCommand = on }
}

// WithKillGrace sets the delay between SIGTERM and SIGKILL on timeout.
func WithKillGrace(d time.Duration) Option {
	return func(s *Shell) { s.killGrace = d }
}

// New returns a Shell rooted at the process working directory.
func New(opts ...Option) *Shell {
	s := &Shell{
		env:       make(map[string]string),
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		killGrace: DefaultKillGrace,
	}
	for _, o := range opts {
		o(s)
	}
	if s.dir == "" {
		if wd, err := os.Getwd(); err == nil {
			s.dir = wd
		}
	}
	if s.term == nil {
		s.term = term.New(s.stdout, s.stderr)
	}
	if s.logger == nil {
		s.logger = logx.Discard()
	}
	return s
}

// Dir returns the current working directory.
func (s *Shell) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Cd changes the working directory. A relative dir is resolved against the
// current one.
func (s *Shell) Cd(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.dir, target)
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("shell: cd %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("shell: cd %s: not a directory", dir)
	}
	s.dir = filepath.Clean(target)
	return nil
}

// SetEnv sets a variable for every later command. An empty key is ignored.
func (s *Shell) SetEnv(key, value string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.env[key] = value
	s.mu.Unlock()
}

// SetPrintCommand turns the echo of commands on or off.
func (s *Shell) SetPrintCommand(on bool) {
	s.mu.Lock()
	s.printCommand = on
	s.mu.Unlock()
}

// Term returns the logger used to echo commands.
func (s *Shell) Term() *term.Logger { return s.term }

func (s *Shell) snapshot() (dir string, env map[string]string, printCommand bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir, maps.Clone(s.env), s.printCommand
}

// Cmd prepares a command line. Lines with pipes, redirections, variable
// expansion or other shell syntax run under the system shell; plain lines
// are split into words and executed directly, with leading KEY=VALUE words
// added to the environment.
func (s *Shell) Cmd(line string) *Cmd {
	c := s.newCmd(strings.TrimSpace(line))
	if nameutil.HasShellSyntax(line) {
		c.name, c.args = shellInterpreter(line)
		return c
	}
	words, err := nameutil.SplitWords(line)
	if err != nil {
		c.err = fmt.Errorf("shell: %q: %w", line, err)
		return c
	}
	assigns, rest := nameutil.SplitAssignments(words)
	for _, kv := range assigns {
		k, v, _ := strings.Cut(kv, "=")
		c.env[k] = v
	}
	if len(rest) == 0 {
		c.err = errors.New("shell: empty command line")
		return c
	}
	c.name, c.args = rest[0], rest[1:]
	return c
}

// Command prepares a direct execution of name with args, without any shell
// interpretation.
func (s *Shell) Command(name string, args ...string) *Cmd {
	display := strings.Join(append([]string{name}, args...), " ")
	c := s.newCmd(display)
	c.name, c.args = name, append([]string(nil), args...)
	if name == "" {
		c.err = errors.New("shell: empty command name")
	}
	return c
}

func (s *Shell) newCmd(display string) *Cmd {
	return &Cmd{sh: s, display: display, env: make(map[string]string)}
}

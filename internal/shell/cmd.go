package shell

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// TimeoutExitCode is reported for a command killed by its timeout.
const TimeoutExitCode = 124

// Cmd is a prepared command. Builders return the same Cmd so calls can be
// chained; nothing runs until a terminal operation (Run, Output, Text, ...).
type Cmd struct {
	sh      *Shell
	display string
	name    string
	args    []string
	err     error

	dir          string
	env          map[string]string
	stdin        io.Reader
	timeout      time.Duration
	printCommand *bool
	quiet        bool
	noThrow      bool
}

// Result is the outcome of a finished command. Stdout and Stderr hold only
// what was captured.
type Result struct {
	Code     int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Cwd runs the command in dir. A relative dir is resolved against the
// shell's working directory.
func (c *Cmd) Cwd(dir string) *Cmd { c.dir = dir; return c }

// Env sets a variable for this command only.
func (c *Cmd) Env(key, value string) *Cmd { c.env[key] = value; return c }

// Stdin feeds r to the command.
func (c *Cmd) Stdin(r io.Reader) *Cmd { c.stdin = r; return c }

// StdinText feeds text to the command.
func (c *Cmd) StdinText(text string) *Cmd { return c.Stdin(strings.NewReader(text)) }

// Timeout kills the command after d.
func (c *Cmd) Timeout(d time.Duration) *Cmd { c.timeout = d; return c }

// PrintCommand overrides the shell's echo setting for this command.
func (c *Cmd) PrintCommand(on bool) *Cmd { c.printCommand = &on; return c }

// Quiet discards output that would otherwise be streamed.
func (c *Cmd) Quiet() *Cmd { c.quiet = true; return c }

// NoThrow makes a non-zero exit a normal result instead of an *ExitError.
func (c *Cmd) NoThrow() *Cmd { c.noThrow = true; return c }

// String returns the command as it is echoed.
func (c *Cmd) String() string { return c.display }

// Run executes the command streaming its output to the shell's writers.
func (c *Cmd) Run(ctx context.Context) (*Result, error) {
	stdout, stderr := c.sh.stdout, c.sh.stderr
	if c.quiet {
		stdout, stderr = io.Discard, io.Discard
	}
	return c.exec(ctx, stdout, stderr)
}

// Output executes the command capturing stdout. Stderr is captured and also
// streamed unless Quiet is set.
func (c *Cmd) Output(ctx context.Context) (*Result, error) {
	var out bytes.Buffer
	stderr := c.sh.stderr
	if c.quiet {
		stderr = io.Discard
	}
	res, err := c.exec(ctx, &out, stderr)
	if res != nil {
		res.Stdout = out.Bytes()
	}
	return res, err
}

// Bytes returns the command's stdout.
func (c *Cmd) Bytes(ctx context.Context) ([]byte, error) {
	res, err := c.Output(ctx)
	if err != nil {
		return nil, err
	}
	return res.Stdout, nil
}

// Text returns stdout with surrounding whitespace removed.
func (c *Cmd) Text(ctx context.Context) (string, error) {
	b, err := c.Bytes(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Lines returns stdout split into lines, without the trailing empty line.
func (c *Cmd) Lines(ctx context.Context) ([]string, error) {
	b, err := c.Bytes(ctx)
	if err != nil {
		return nil, err
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// JSON decodes stdout into v.
func (c *Cmd) JSON(ctx context.Context, v any) error {
	b, err := c.Bytes(ctx)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("shell: decoding output of %s: %w", c.display, err)
	}
	return nil
}

func (c *Cmd) build() (*exec.Cmd, error) {
	if c.err != nil {
		return nil, c.err
	}
	dir, env, _ := c.sh.snapshot()
	if c.dir != "" {
		if filepath.IsAbs(c.dir) {
			dir = c.dir
		} else {
			dir = filepath.Join(dir, c.dir)
		}
	}
	maps.Copy(env, c.env)

	cmd := exec.Command(c.name, c.args...)
	cmd.Dir = dir
	cmd.Env = applyEnvOverlay(os.Environ(), env)
	cmd.WaitDelay = c.sh.killGrace
	setProcessGroup(cmd)

	switch {
	case c.stdin != nil:
		cmd.Stdin = c.stdin
	case c.sh.stdin != nil:
		cmd.Stdin = c.sh.stdin
	}
	return cmd, nil
}

func (c *Cmd) echo() {
	_, _, on := c.sh.snapshot()
	if c.printCommand != nil {
		on = *c.printCommand
	}
	if on {
		c.sh.term.LogCommand(c.display)
	}
}

func (c *Cmd) exec(ctx context.Context, stdout, stderr io.Writer) (*Result, error) {
	cmd, err := c.build()
	if err != nil {
		return nil, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var errBuf bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &errBuf)

	c.echo()
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("shell: starting %s: %w", c.display, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	interrupted := false
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		interrupted = true
		waitErr = stop(cmd, done, c.sh.killGrace)
	}

	res := &Result{Stderr: errBuf.Bytes(), Duration: time.Since(start)}
	entry := c.sh.logger.WithFields(log.Fields{
		"command":  c.display,
		"duration": res.Duration,
	})

	if interrupted {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.Code = TimeoutExitCode
			entry.WithField("code", res.Code).Debug("command timed out")
			return res, &ExitError{Command: c.display, Code: res.Code, Stderr: res.Stderr, TimedOut: true}
		}
		entry.Debug("command cancelled")
		return res, fmt.Errorf("shell: %s: %w", c.display, ctx.Err())
	}

	if waitErr != nil {
		var ee *exec.ExitError
		if !errors.As(waitErr, &ee) {
			return res, fmt.Errorf("shell: running %s: %w", c.display, waitErr)
		}
		res.Code = exitStatus(ee)
	}
	entry.WithField("code", res.Code).Debug("command finished")

	if res.Code != 0 && !c.noThrow {
		return res, &ExitError{Command: c.display, Code: res.Code, Stderr: res.Stderr}
	}
	return res, nil
}

// stop terminates cmd, escalating to a kill when it outlives grace, and
// returns its wait result.
func stop(cmd *exec.Cmd, done <-chan error, grace time.Duration) error {
	terminate(cmd)
	t := time.NewTimer(grace)
	defer t.Stop()
	select {
	case err := <-done:
		return err
	case <-t.C:
		kill(cmd)
		return <-done
	}
}

// exitStatus maps a failed wait to an exit code. A process killed by a
// signal reports 128+signal, as shells do.
func exitStatus(ee *exec.ExitError) int {
	if code := ee.ExitCode(); code >= 0 {
		return code
	}
	if sig, ok := signalNumber(ee); ok {
		return 128 + sig
	}
	return 1
}

func applyEnvOverlay(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return append([]string(nil), base...)
	}
	out := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		k, _, ok := strings.Cut(kv, "=")
		if _, replaced := overlay[k]; ok && replaced {
			continue
		}
		out = append(out, kv)
	}
	for _, k := range sortedKeys(overlay) {
		out = append(out, k+"="+overlay[k])
	}
	return out
}

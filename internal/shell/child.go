package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Child is a command started in the background.
type Child struct {
	ID uuid.UUID

	cmd     *Cmd
	proc    *exec.Cmd
	stdout  io.ReadCloser
	stderr  bytes.Buffer
	start   time.Time
	stopCtx func() bool

	killOnce sync.Once
	exited   chan struct{}
	waitOnce sync.Once
	res      *Result
	err      error
}

// Spawn starts the command without waiting for it. Its stdout is available
// through Child.Stdout; read it to EOF before calling Wait. Cancelling ctx
// kills the child.
func (c *Cmd) Spawn(ctx context.Context) (*Child, error) {
	proc, err := c.build()
	if err != nil {
		return nil, err
	}
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("shell: %s: %w", c.display, err)
	}
	ch := &Child{
		ID:     uuid.New(),
		cmd:    c,
		proc:   proc,
		stdout: stdout,
		exited: make(chan struct{}),
	}
	if c.quiet {
		proc.Stderr = &ch.stderr
	} else {
		proc.Stderr = io.MultiWriter(c.sh.stderr, &ch.stderr)
	}

	c.echo()
	ch.start = time.Now()
	if err := proc.Start(); err != nil {
		return nil, fmt.Errorf("shell: starting %s: %w", c.display, err)
	}
	ch.stopCtx = context.AfterFunc(ctx, func() { _ = ch.Kill() })
	c.sh.logger.WithFields(log.Fields{
		"command": c.display,
		"child":   ch.ID,
		"pid":     proc.Process.Pid,
	}).Debug("child started")
	return ch, nil
}

// Stdout returns the child's standard output.
func (ch *Child) Stdout() io.Reader { return ch.stdout }

// Pid returns the operating system process id.
func (ch *Child) Pid() int { return ch.proc.Process.Pid }

// Wait blocks until the child exits. It is safe to call more than once.
func (ch *Child) Wait() (*Result, error) {
	ch.waitOnce.Do(func() {
		err := ch.proc.Wait()
		close(ch.exited)
		ch.stopCtx()

		ch.res = &Result{Stderr: ch.stderr.Bytes(), Duration: time.Since(ch.start)}
		if err != nil {
			var ee *exec.ExitError
			if !errors.As(err, &ee) {
				ch.err = fmt.Errorf("shell: waiting for %s: %w", ch.cmd.display, err)
				return
			}
			ch.res.Code = exitStatus(ee)
		}
		ch.cmd.sh.logger.WithFields(log.Fields{
			"command":  ch.cmd.display,
			"child":    ch.ID,
			"code":     ch.res.Code,
			"duration": ch.res.Duration,
		}).Debug("child exited")
		if ch.res.Code != 0 && !ch.cmd.noThrow {
			ch.err = &ExitError{Command: ch.cmd.display, Code: ch.res.Code, Stderr: ch.res.Stderr}
		}
	})
	return ch.res, ch.err
}

// Kill terminates the child, escalating to SIGKILL if it is still running
// after the shell's grace period. Call Wait afterwards to reap it.
func (ch *Child) Kill() error {
	ch.killOnce.Do(func() {
		terminate(ch.proc)
		go func() {
			t := time.NewTimer(ch.cmd.sh.killGrace)
			defer t.Stop()
			select {
			case <-ch.exited:
			case <-t.C:
				kill(ch.proc)
			}
		}()
	})
	return nil
}

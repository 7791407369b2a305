package shell

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Which returns the path of the executable name found in PATH.
func Which(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("shell: %q not found in PATH: %w", name, err)
	}
	return path, nil
}

// CommandExists reports whether name is an executable in PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseDelay reads a delay written either as a Go duration ("1.5s", "200ms",
// "1m30s") or as a bare number of milliseconds ("200").
func ParseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("shell: empty delay")
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("shell: negative delay %q", s)
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("shell: invalid delay %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("shell: negative delay %q", s)
	}
	return d, nil
}

// RetryOptions controls Retry. Backoff, when set, replaces the fixed Delay:
// it gets the number of failed attempts so far (1-based).
type RetryOptions struct {
	Count   int
	Delay   time.Duration
	Backoff func(attempt int) time.Duration
}

// RetryError is returned when every attempt failed. It wraps the last error.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// Retry calls action until it succeeds, Count attempts were made, or ctx is
// done. A Count below 1 means a single attempt.
func Retry(ctx context.Context, opts RetryOptions, action func(ctx context.Context) error) error {
	count := max(opts.Count, 1)
	var last error
	for attempt := 1; attempt <= count; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if last = action(ctx); last == nil {
			return nil
		}
		if attempt == count {
			break
		}
		delay := opts.Delay
		if opts.Backoff != nil {
			delay = opts.Backoff(attempt)
		}
		if err := Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return &RetryError{Attempts: count, Err: last}
}

// Exponential returns a backoff doubling from initial and capped at limit.
// A zero limit means no cap; delays past the range of time.Duration
// saturate at its maximum.
func Exponential(initial, limit time.Duration) func(attempt int) time.Duration {
	ceiling := time.Duration(math.MaxInt64)
	if limit > 0 {
		ceiling = limit
	}
	return func(attempt int) time.Duration {
		f := float64(initial) * math.Pow(2, float64(attempt-1))
		if f >= float64(ceiling) {
			return ceiling
		}
		return time.Duration(f)
	}
}

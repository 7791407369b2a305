// Package progress renders a progress indicator on a terminal line: a bar
// when the total is known, a spinner otherwise. A background ticker redraws
// it until Finish.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// DefaultInterval is the redraw period.
const DefaultInterval = 100 * time.Millisecond

const barWidth = 20

var spinnerFrames = []string{"|", "/", "-", "\\"}

// Bar is a progress indicator. All methods are safe for concurrent use.
type Bar struct {
	w        io.Writer
	interval time.Duration
	live     bool
	noColor  bool

	mu       sync.Mutex
	message  string
	length   int
	pos      int
	frame    int
	finished bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// Option configures a Bar.
type Option func(*Bar)

// WithLength makes the bar determinate with n steps.
func WithLength(n int) Option {
	return func(b *Bar) { b.length = max(n, 0) }
}

// WithInterval sets the redraw period.
func WithInterval(d time.Duration) Option {
	return func(b *Bar) {
		if d > 0 {
			b.interval = d
		}
	}
}

// WithLive forces live redrawing on or off. By default it is on only when
// the writer is a terminal.
func WithLive(on bool) Option {
	return func(b *Bar) { b.live = on }
}

// WithNoColor disables styling.
func WithNoColor() Option {
	return func(b *Bar) { b.noColor = true }
}

// New starts a progress indicator on w.
func New(w io.Writer, message string, opts ...Option) *Bar {
	b := &Bar{
		w:        w,
		message:  message,
		interval: DefaultInterval,
		live:     isTerminal(w),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(b)
	}
	if !b.live {
		return b
	}

	b.mu.Lock()
	b.draw()
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.mu.Lock()
				b.frame++
				b.draw()
				b.mu.Unlock()
			case <-b.stop:
				return
			}
		}
	}()
	return b
}

// Increment advances the bar by one step.
func (b *Bar) Increment() { b.Add(1) }

// Add advances the bar by n steps.
func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setPosition(b.pos + n)
}

// SetPosition moves the bar to n, clamped to [0, length].
func (b *Bar) SetPosition(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setPosition(n)
}

func (b *Bar) setPosition(n int) {
	if n < 0 {
		n = 0
	}
	if b.length > 0 && n > b.length {
		n = b.length
	}
	b.pos = n
}

// Position returns the current step.
func (b *Bar) Position() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

// SetMessage replaces the text shown next to the indicator.
func (b *Bar) SetMessage(message string) {
	b.mu.Lock()
	b.message = message
	b.mu.Unlock()
}

// Finish stops redrawing and prints the final state on its own line. Later
// calls do nothing.
func (b *Bar) Finish() {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	b.mu.Unlock()

	close(b.stop)
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.live {
		fmt.Fprint(b.w, "\r\033[K")
	}
	fmt.Fprintln(b.w, b.finalLine())
}

// With runs fn and finishes the bar afterwards, whatever fn returns.
func (b *Bar) With(fn func() error) error {
	defer b.Finish()
	return fn()
}

// draw redraws the live line. Callers hold mu.
func (b *Bar) draw() {
	fmt.Fprint(b.w, "\r\033[K"+b.line())
}

func (b *Bar) line() string {
	if b.length == 0 {
		frame := spinnerFrames[b.frame%len(spinnerFrames)]
		return b.paint(color.FgCyan, frame) + " " + b.message
	}
	return b.message + " " + b.bar() + fmt.Sprintf(" %d/%d", b.pos, b.length)
}

func (b *Bar) finalLine() string {
	if b.length == 0 {
		return b.paint(color.FgGreen, "✓") + " " + b.message
	}
	return b.message + " " + b.bar() + fmt.Sprintf(" %d/%d", b.pos, b.length)
}

func (b *Bar) bar() string {
	filled := barWidth * b.pos / b.length
	return "[" + b.paint(color.FgGreen, strings.Repeat("=", filled)) + strings.Repeat(" ", barWidth-filled) + "]"
}

func (b *Bar) paint(c color.Color, s string) string {
	if b.noColor || s == "" {
		return s
	}
	return c.Sprint(s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Package term prints user-facing, colored progress lines: a plain log, a
// step line whose first word is highlighted, warnings, errors, light
// secondary text and the echo of executed commands.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
)

// Styles used by Logger. Exported so commands can color their own output
// consistently.
var (
	StepStyle    = color.New(color.FgGreen, color.OpBold)
	ErrorStyle   = color.New(color.FgRed, color.OpBold)
	WarnStyle    = color.New(color.FgYellow, color.OpBold)
	LightStyle   = color.New(color.FgDarkGray)
	CommandStyle = color.New(color.FgWhite, color.OpBold)
	HighlightBG  = color.New(color.BgLightBlue, color.FgBlack)
)

// Logger writes styled lines. Log, LogStep and LogLight go to the output
// writer; LogError and LogWarn go to the error writer.
type Logger struct {
	out     io.Writer
	errOut  io.Writer
	noColor bool
}

// Option configures a Logger.
type Option func(*Logger)

// NoColor disables styling, e.g. for tests or when output is piped.
func NoColor() Option {
	return func(l *Logger) { l.noColor = true }
}

// New returns a Logger writing to out and errOut.
func New(out, errOut io.Writer, opts ...Option) *Logger {
	l := &Logger{out: out, errOut: errOut}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Paint renders s with style unless colors are disabled.
func (l *Logger) Paint(style color.Style, s string) string {
	if l.noColor {
		return s
	}
	return style.Sprint(s)
}

// Log prints its arguments separated by spaces.
func (l *Logger) Log(a ...any) {
	fmt.Fprintln(l.out, joinArgs(a))
}

// LogStep prints first in bold green followed by the rest of the message.
func (l *Logger) LogStep(first string, rest ...any) {
	l.emphasized(l.out, StepStyle, first, rest)
}

// LogError is LogStep in red, on the error writer.
func (l *Logger) LogError(first string, rest ...any) {
	l.emphasized(l.errOut, ErrorStyle, first, rest)
}

// LogWarn is LogStep in yellow, on the error writer.
func (l *Logger) LogWarn(first string, rest ...any) {
	l.emphasized(l.errOut, WarnStyle, first, rest)
}

// LogLight prints text in gray.
func (l *Logger) LogLight(a ...any) {
	fmt.Fprintln(l.out, l.Paint(LightStyle, joinArgs(a)))
}

// LogCommand echoes a command line before it runs, prefixed with "> ".
func (l *Logger) LogCommand(line string) {
	fmt.Fprintln(l.errOut, l.Paint(CommandStyle, ">")+" "+line)
}

// Out returns the output writer.
func (l *Logger) Out() io.Writer { return l.out }

// Err returns the error writer.
func (l *Logger) Err() io.Writer { return l.errOut }

func (l *Logger) emphasized(w io.Writer, style color.Style, first string, rest []any) {
	line := l.Paint(style, first)
	if msg := joinArgs(rest); msg != "" {
		line += " " + msg
	}
	fmt.Fprintln(w, line)
}

func joinArgs(a []any) string {
	parts := make([]string, 0, len(a))
	for _, v := range a {
		parts = append(parts, fmt.Sprint(v))
	}
	return strings.Join(parts, " ")
}

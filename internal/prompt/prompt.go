// Package prompt asks the user questions on a terminal: free text (optionally
// masked), yes/no confirmation, single choice and multiple choice.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// ErrAborted is returned when input ends before an answer is given.
var ErrAborted = errors.New("prompt: aborted")

var (
	questionStyle = color.New(color.FgCyan, color.OpBold)
	hintStyle     = color.New(color.FgDarkGray)
)

// Choice is a MultiSelect option.
type Choice struct {
	Text     string
	Selected bool
}

// Prompter reads answers from in and writes questions to out. Calls are
// serialized.
type Prompter struct {
	mu      sync.Mutex
	raw     io.Reader
	in      *bufio.Reader
	out     io.Writer
	noColor bool
}

// Option configures a Prompter.
type Option func(*Prompter)

// NoColor disables styling.
func NoColor() Option {
	return func(p *Prompter) { p.noColor = true }
}

// New returns a Prompter.
func New(in io.Reader, out io.Writer, opts ...Option) *Prompter {
	p := &Prompter{raw: in, in: bufio.NewReader(in), out: out}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Input asks for a line of text. With mask set and a terminal on the input
// side, the answer is not echoed.
func (p *Prompter) Input(msg string, mask bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.out, p.paint(questionStyle, msg))
	if mask {
		if fd, ok := terminalFd(p.raw); ok {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(p.out)
			if err != nil {
				return "", fmt.Errorf("prompt: reading password: %w", err)
			}
			return string(b), nil
		}
	}
	return p.readLine()
}

// Confirm asks a yes/no question. An empty answer returns def.
func (p *Prompter) Confirm(msg string, def bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	hint := "(y/N)"
	if def {
		hint = "(Y/n)"
	}
	for {
		fmt.Fprintf(p.out, "%s %s ", p.paint(questionStyle, msg), p.paint(hintStyle, hint))
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Select asks for one of options and returns its index. The answer is either
// a 1-based number or the option text.
func (p *Prompter) Select(msg string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("prompt: select needs at least one option")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, p.paint(questionStyle, msg))
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	for {
		fmt.Fprint(p.out, p.paint(hintStyle, "> "))
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		answer := strings.TrimSpace(line)
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		if i := slices.Index(options, answer); i >= 0 {
			return i, nil
		}
		fmt.Fprintf(p.out, "Invalid choice %q, enter a number between 1 and %d.\n", answer, len(options))
	}
}

// MultiSelect asks for any number of choices, given as comma-separated
// 1-based numbers. An empty answer keeps the preselected choices. The
// returned indexes are sorted.
func (p *Prompter) MultiSelect(msg string, choices []Choice) ([]int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, p.paint(questionStyle, msg))
	var preselected []int
	for i, c := range choices {
		mark := "[ ]"
		if c.Selected {
			mark = "[x]"
			preselected = append(preselected, i)
		}
		fmt.Fprintf(p.out, "  %d) %s %s\n", i+1, mark, c.Text)
	}
	for {
		fmt.Fprint(p.out, p.paint(hintStyle, "> "))
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			return preselected, nil
		}
		picked, err := parseIndexes(line, len(choices))
		if err == nil {
			return picked, nil
		}
		fmt.Fprintln(p.out, err)
	}
}

func parseIndexes(line string, n int) ([]int, error) {
	var out []int
	for _, field := range strings.Split(line, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		i, err := strconv.Atoi(field)
		if err != nil || i < 1 || i > n {
			return nil, fmt.Errorf("invalid choice %q, enter numbers between 1 and %d", field, n)
		}
		if !slices.Contains(out, i-1) {
			out = append(out, i-1)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrAborted
		}
		return "", fmt.Errorf("prompt: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *Prompter) paint(style color.Style, s string) string {
	if p.noColor {
		return s
	}
	return style.Sprint(s)
}

func terminalFd(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

package clite

import (
	"strconv"
	"strings"

	"github.com/thellimist/clite/internal/nameutil"
	"github.com/thellimist/clite/internal/suggest"
)

// Invocation is the parsed form of an argument vector.
type Invocation struct {
	Command string         // selected command name, "" when the tool has none
	Default bool           // Command was chosen because argv named none
	Args    []string       // positional arguments for Command
	Options map[string]any // typed option values keyed by option name
	Help    bool
}

// Parse reads argv left to right against the descriptor.
//
// Flags (-x, --x, --x=v) may appear before the command; they are matched
// case-insensitively with dashes and underscores ignored. The first
// non-flag token selects a command when it names one, and everything after
// it is passed through untouched. Otherwise the default command receives all
// non-flag tokens. "--" ends flag parsing. The last occurrence of a repeated
// flag wins.
//
// A non-bool flag without "=" takes the next token as its value unless that
// token is itself a known flag. Bool flags never consume the next token:
// write --verbose=false, not --verbose false.
func (d *Descriptor) Parse(argv []string) (*Invocation, error) {
	inv := &Invocation{Options: make(map[string]any)}
	var positional []string
	flagsDone := false

	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		if !flagsDone && tok == "--" {
			flagsDone = true
			continue
		}
		if !flagsDone && isFlagToken(tok) {
			consumed, err := d.parseFlag(argv, i, inv)
			if err != nil {
				return nil, err
			}
			i += consumed
			continue
		}
		if inv.Command == "" && len(positional) == 0 {
			if c, ok := d.Command(tok); ok {
				inv.Command = c.Name
				inv.Args = append([]string(nil), argv[i+1:]...)
				return inv, nil
			}
		}
		positional = append(positional, tok)
	}

	inv.Args = positional
	switch {
	case len(d.commands) == 0:
		// Nothing to dispatch; only --help does anything.
	case d.defaultCmd != nil:
		inv.Command = d.defaultCmd.Name
		inv.Default = true
	case inv.Help:
		// Help wins over a missing command.
	case len(positional) > 0:
		return nil, &UsageError{
			Message:    "unknown command " + strconv.Quote(positional[0]),
			Suggestion: suggest.Closest(positional[0], d.commandNames()),
		}
	default:
		return nil, usageErrorf("no command given")
	}
	return inv, nil
}

// parseFlag handles argv[i] and returns how many following tokens it
// consumed as its value.
func (d *Descriptor) parseFlag(argv []string, i int, inv *Invocation) (int, error) {
	tok := argv[i]
	name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")
	key := nameutil.NormalizeKey(name)

	if reservedOptions[key] {
		if !hasValue {
			inv.Help = true
			return 0, nil
		}
		b, err := KindBool.Coerce(value)
		if err != nil {
			return 0, usageErrorf("invalid value %q for %s: %v", value, tok, err)
		}
		inv.Help = b.(bool)
		return 0, nil
	}

	opt, ok := d.optIndex[key]
	if !ok {
		flag := strings.SplitN(tok, "=", 2)[0]
		return 0, &UsageError{
			Message:    "unknown flag " + flag,
			Suggestion: suggest.Closest("--"+name, d.optionNames()),
		}
	}

	consumed := 0
	if !hasValue {
		switch {
		case opt.Kind == KindBool:
			value = "true"
		case i+1 < len(argv) && !d.namesFlag(argv[i+1]):
			value = argv[i+1]
			consumed = 1
		default:
			return 0, usageErrorf("flag --%s needs a %s value", opt.Name, opt.Kind)
		}
	}

	typed, err := opt.Kind.Coerce(value)
	if err != nil {
		return 0, usageErrorf("invalid value %q for --%s: %v", value, opt.Name, err)
	}
	inv.Options[opt.Name] = typed
	return consumed, nil
}

// namesFlag reports whether tok is a flag the descriptor knows, including
// the reserved help flags.
func (d *Descriptor) namesFlag(tok string) bool {
	if !isFlagToken(tok) {
		return false
	}
	name, _, _ := strings.Cut(strings.TrimLeft(tok, "-"), "=")
	key := nameutil.NormalizeKey(name)
	_, ok := d.optIndex[key]
	return ok || reservedOptions[key]
}

// isFlagToken reports whether tok should be read as a flag. A lone "-" and
// negative numbers are positional.
func isFlagToken(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return false
	}
	return true
}

package clite

import (
	"fmt"
	"strings"

	"github.com/thellimist/clite/internal/nameutil"
)

// Handler is the body of a command.
type Handler func(*Context) error

// Option is a flag bound to one typed field of the tool.
type Option struct {
	Field   string // registered field name, e.g. "webUrl"
	Name    string // flag spelling without dashes, e.g. "web-url"
	Kind    Kind
	Default any
	Usage   string

	target any // *bool, *int, *float64 or *string
}

// Value returns the field's current value.
func (o *Option) Value() any {
	switch p := o.target.(type) {
	case *bool:
		return *p
	case *int:
		return *p
	case *float64:
		return *p
	case *string:
		return *p
	}
	return nil
}

// set coerces v to the option's kind and stores it in the bound field.
func (o *Option) set(v any) error {
	typed, err := o.Kind.Coerce(v)
	if err != nil {
		return err
	}
	switch p := o.target.(type) {
	case *bool:
		*p = typed.(bool)
	case *int:
		*p = typed.(int)
	case *float64:
		*p = typed.(float64)
	case *string:
		*p = typed.(string)
	}
	return nil
}

// Command is one operation of the tool.
type Command struct {
	Field    string   // registered method name, e.g. "readFile"
	Name     string   // command spelling, e.g. "read-file"
	Usage    string   // one-line description
	ArgNames []string // positional argument names shown in help
	Default  bool     // invoked when argv selects no command

	handler Handler
}

// CommandOption configures a Command at registration.
type CommandOption func(*Command)

// WithArgs names the command's positional arguments for the help text.
func WithArgs(names ...string) CommandOption {
	return func(c *Command) { c.ArgNames = append(c.ArgNames, names...) }
}

// WithUsage sets the command's one-line description.
func WithUsage(text string) CommandOption {
	return func(c *Command) { c.Usage = text }
}

// Builder collects a tool's options and commands. Registration never fails
// on its own; every problem is reported together by Build.
type Builder struct {
	name        string
	description string
	options     []*Option
	commands    []*Command
	problems    []string
}

// NewBuilder starts a descriptor for the tool called name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Name returns the tool name.
func (b *Builder) Name() string { return b.name }

// Description sets the text shown under the usage line.
func (b *Builder) Description(text string) *Builder {
	b.description = text
	return b
}

// Bool registers a boolean option. A bare --flag sets it to true.
func (b *Builder) Bool(field string, target *bool, def bool, usage string) *Builder {
	return b.option(field, KindBool, target, def, usage, target == nil)
}

// Int registers an integer option.
func (b *Builder) Int(field string, target *int, def int, usage string) *Builder {
	return b.option(field, KindInt, target, def, usage, target == nil)
}

// Float registers a floating-point option.
func (b *Builder) Float(field string, target *float64, def float64, usage string) *Builder {
	return b.option(field, KindFloat, target, def, usage, target == nil)
}

// String registers a string option.
func (b *Builder) String(field string, target *string, def string, usage string) *Builder {
	return b.option(field, KindString, target, def, usage, target == nil)
}

// Command registers a command. Its spelling is derived from field.
func (b *Builder) Command(field string, h Handler, opts ...CommandOption) *Builder {
	return b.command(field, h, false, opts)
}

// Default registers the command invoked when argv names none.
func (b *Builder) Default(field string, h Handler, opts ...CommandOption) *Builder {
	return b.command(field, h, true, opts)
}

func (b *Builder) option(field string, kind Kind, target any, def any, usage string, nilTarget bool) *Builder {
	if isPrivate(field) {
		return b
	}
	if nameutil.ToFlagName(field) == "" {
		b.problems = append(b.problems, fmt.Sprintf("option field %q has no usable name", field))
		return b
	}
	if nilTarget {
		b.problems = append(b.problems, fmt.Sprintf("option %q has no target field", field))
		return b
	}
	b.options = append(b.options, &Option{
		Field:   field,
		Name:    nameutil.ToFlagName(field),
		Kind:    kind,
		Default: def,
		Usage:   usage,
		target:  target,
	})
	return b
}

func (b *Builder) command(field string, h Handler, def bool, opts []CommandOption) *Builder {
	if isPrivate(field) {
		return b
	}
	if nameutil.ToFlagName(field) == "" {
		b.problems = append(b.problems, fmt.Sprintf("command method %q has no usable name", field))
		return b
	}
	if h == nil {
		b.problems = append(b.problems, fmt.Sprintf("command %q has no handler", field))
		return b
	}
	c := &Command{
		Field:   field,
		Name:    nameutil.ToFlagName(field),
		Default: def,
		handler: h,
	}
	for _, o := range opts {
		o(c)
	}
	b.commands = append(b.commands, c)
	return b
}

// isPrivate reports whether a field is internal to the tool and must not be
// exposed on the command line.
func isPrivate(field string) bool {
	return strings.HasPrefix(field, "_")
}

// reservedOptions cannot be declared by a tool; the dispatcher owns them.
var reservedOptions = map[string]bool{"help": true, "h": true}

// Build validates the registrations and returns the Descriptor. All problems
// are reported in a single *ConfigError.
func (b *Builder) Build() (*Descriptor, error) {
	problems := append([]string(nil), b.problems...)
	d := &Descriptor{
		Name:        b.name,
		Description: b.description,
		optIndex:    make(map[string]*Option, len(b.options)),
		cmdIndex:    make(map[string]*Command, len(b.commands)),
	}

	for _, o := range b.options {
		key := nameutil.NormalizeKey(o.Name)
		if reservedOptions[key] {
			problems = append(problems, fmt.Sprintf("option %q uses reserved name --%s", o.Field, o.Name))
			continue
		}
		if prev, dup := d.optIndex[key]; dup {
			problems = append(problems, fmt.Sprintf("options %q and %q both map to --%s", prev.Field, o.Field, o.Name))
			continue
		}
		d.optIndex[key] = o
		d.options = append(d.options, o)
	}

	for _, c := range b.commands {
		key := nameutil.NormalizeKey(c.Name)
		if prev, dup := d.cmdIndex[key]; dup {
			problems = append(problems, fmt.Sprintf("commands %q and %q both map to %s", prev.Field, c.Field, c.Name))
			continue
		}
		if c.Default {
			if d.defaultCmd != nil {
				problems = append(problems, fmt.Sprintf("commands %q and %q are both marked default", d.defaultCmd.Field, c.Field))
				continue
			}
			d.defaultCmd = c
		}
		d.cmdIndex[key] = c
		d.commands = append(d.commands, c)
	}

	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}

	// Without an explicit default, a command named "main" takes the role.
	if d.defaultCmd == nil {
		if c, ok := d.cmdIndex["main"]; ok {
			c.Default = true
			d.defaultCmd = c
		}
	}
	return d, nil
}

package clite

import "github.com/thellimist/clite/internal/nameutil"

// Descriptor is the validated table of a tool's commands and options. It is
// read-only after Build; parsing never modifies it.
type Descriptor struct {
	Name        string
	Description string

	options    []*Option
	commands   []*Command
	optIndex   map[string]*Option
	cmdIndex   map[string]*Command
	defaultCmd *Command
}

// Describe builds the descriptor of tool under the given name.
func Describe(name string, tool Tool) (*Descriptor, error) {
	b := NewBuilder(name)
	tool.Register(b)
	return b.Build()
}

// Options returns the options in registration order.
func (d *Descriptor) Options() []*Option {
	return append([]*Option(nil), d.options...)
}

// Commands returns the commands in registration order.
func (d *Descriptor) Commands() []*Command {
	return append([]*Command(nil), d.commands...)
}

// Option looks an option up by any spelling of its name.
func (d *Descriptor) Option(name string) (*Option, bool) {
	o, ok := d.optIndex[nameutil.NormalizeKey(name)]
	return o, ok
}

// Command looks a command up by any spelling of its name.
func (d *Descriptor) Command(name string) (*Command, bool) {
	c, ok := d.cmdIndex[nameutil.NormalizeKey(name)]
	return c, ok
}

// DefaultCommand returns the command run when argv selects none, or nil.
func (d *Descriptor) DefaultCommand() *Command {
	return d.defaultCmd
}

func (d *Descriptor) optionNames() []string {
	names := make([]string, 0, len(d.options)+1)
	for _, o := range d.options {
		names = append(names, "--"+o.Name)
	}
	return append(names, "--help")
}

func (d *Descriptor) commandNames() []string {
	names := make([]string, 0, len(d.commands))
	for _, c := range d.commands {
		names = append(names, c.Name)
	}
	return names
}

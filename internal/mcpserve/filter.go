package mcpserve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thellimist/clite/internal/clite"
	"github.com/thellimist/clite/internal/suggest"
)

// ParseCommandList splits a comma-separated list of command names, trimming
// blanks and dropping empty entries and duplicates. Order is kept.
func ParseCommandList(csv string) []string {
	if csv == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range strings.Split(csv, ",") {
		name := strings.TrimSpace(p)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// WithInclude exposes only the named commands.
func WithInclude(names ...string) Option {
	return func(s *Server) { s.include = append(s.include, names...) }
}

// WithExclude hides the named commands.
func WithExclude(names ...string) Option {
	return func(s *Server) { s.exclude = append(s.exclude, names...) }
}

// selectCommands applies the include or exclude list. Names are matched with
// any spelling the dispatcher accepts. An unknown include name is an error,
// with a suggestion when one is close; excluding everything is an error too.
func selectCommands(d *clite.Descriptor, include, exclude []string) ([]*clite.Command, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return nil, errors.New("mcpserve: include and exclude lists cannot be combined")
	}
	all := d.Commands()
	if len(include) == 0 && len(exclude) == 0 {
		return all, nil
	}

	available := make([]string, 0, len(all))
	for _, c := range all {
		available = append(available, c.Name)
	}

	if len(include) > 0 {
		var out []*clite.Command
		picked := make(map[string]bool)
		for _, name := range include {
			c, ok := d.Command(name)
			if !ok {
				msg := fmt.Sprintf("mcpserve: command %q not found, available: %s", name, strings.Join(available, ", "))
				if s := suggest.Closest(name, available); s != "" {
					msg += fmt.Sprintf(" (did you mean %s?)", s)
				}
				return nil, errors.New(msg)
			}
			if !picked[c.Name] {
				picked[c.Name] = true
				out = append(out, c)
			}
		}
		return out, nil
	}

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		if c, ok := d.Command(name); ok {
			skip[c.Name] = true
		}
	}
	var out []*clite.Command
	for _, c := range all {
		if !skip[c.Name] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("mcpserve: every command is excluded, nothing to serve")
	}
	return out, nil
}

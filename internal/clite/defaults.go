package clite

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/thellimist/clite/internal/nameutil"
)

// Defaults holds option values read from a file. Global values apply to
// every command; values under a command apply only when that command runs
// and override the global ones.
//
//	global:
//	  web-url: https://example.com
//	commands:
//	  read-file:
//	    verbose: true
type Defaults struct {
	Global   map[string]any            `yaml:"global"`
	Commands map[string]map[string]any `yaml:"commands"`
}

// LoadDefaults reads a YAML defaults file.
func LoadDefaults(path string) (*Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("reading defaults: %v", err)}}
	}
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, &ConfigError{Problems: []string{fmt.Sprintf("parsing defaults %s: %v", path, err)}}
	}
	return &d, nil
}

// Merge returns the values in effect for command, keyed by normalized
// option name. Command entries override global ones.
func (d *Defaults) Merge(command string) map[string]any {
	merged := make(map[string]any, len(d.Global))
	for k, v := range d.Global {
		merged[nameutil.NormalizeKey(k)] = v
	}
	cmdKey := nameutil.NormalizeKey(command)
	for name, params := range d.Commands {
		if nameutil.NormalizeKey(name) != cmdKey {
			continue
		}
		for k, v := range params {
			merged[nameutil.NormalizeKey(k)] = v
		}
	}
	return merged
}

// Validate checks every key against the descriptor: each must name an
// option, each command section must name a command, and each value must
// coerce to its option's kind.
func (d *Defaults) Validate(desc *Descriptor) error {
	var problems []string
	check := func(section string, params map[string]any) {
		for _, k := range sortedKeys(params) {
			opt, ok := desc.Option(k)
			if !ok {
				problems = append(problems, fmt.Sprintf("defaults %s: unknown option %q", section, k))
				continue
			}
			if _, err := opt.Kind.Coerce(params[k]); err != nil {
				problems = append(problems, fmt.Sprintf("defaults %s: option %q: %v", section, k, err))
			}
		}
	}

	check("global", d.Global)
	for _, name := range sortedKeys(d.Commands) {
		if _, ok := desc.Command(name); !ok {
			problems = append(problems, fmt.Sprintf("defaults: unknown command %q", name))
			continue
		}
		check("commands."+name, d.Commands[name])
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

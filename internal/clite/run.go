package clite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thellimist/clite/internal/logx"
	"github.com/thellimist/clite/internal/nameutil"
)

// Tool is implemented by anything that can describe its options and
// commands.
type Tool interface {
	Register(b *Builder)
}

// ToolFunc adapts a plain function to Tool.
type ToolFunc func(b *Builder)

func (f ToolFunc) Register(b *Builder) { f(b) }

// Context is handed to the running command.
type Context struct {
	context.Context

	Command string
	Args    []string
	Stdout  io.Writer
	Stderr  io.Writer
	Log     *log.Entry
}

// Arg returns the i-th positional argument, or def when there are fewer.
func (c *Context) Arg(i int, def string) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return def
}

// RunOption configures Run and Execute.
type RunOption func(*runConfig)

type runConfig struct {
	name         string
	stdout       io.Writer
	stderr       io.Writer
	logger       *log.Logger
	defaults     *Defaults
	defaultsPath string
	envPrefix    string
	lookupEnv    func(string) (string, bool)
}

// WithName sets the tool name shown in help. Defaults to the program name.
func WithName(name string) RunOption {
	return func(c *runConfig) { c.name = name }
}

// WithOutput redirects the command's and the dispatcher's output.
func WithOutput(stdout, stderr io.Writer) RunOption {
	return func(c *runConfig) { c.stdout, c.stderr = stdout, stderr }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *log.Logger) RunOption {
	return func(c *runConfig) { c.logger = l }
}

// WithDefaults layers option values from d under the command line.
func WithDefaults(d *Defaults) RunOption {
	return func(c *runConfig) { c.defaults = d }
}

// WithDefaultsFile loads defaults from a YAML file. An empty path is ignored.
func WithDefaultsFile(path string) RunOption {
	return func(c *runConfig) { c.defaultsPath = path }
}

// WithEnvPrefix binds every option to the environment variable
// PREFIX_FIELD_NAME (e.g. CLITE_DEMO_WEB_URL for field webUrl).
func WithEnvPrefix(prefix string) RunOption {
	return func(c *runConfig) { c.envPrefix = prefix }
}

// WithLookupEnv replaces os.LookupEnv for environment bindings.
func WithLookupEnv(fn func(string) (string, bool)) RunOption {
	return func(c *runConfig) { c.lookupEnv = fn }
}

func newRunConfig(opts []RunOption) *runConfig {
	cfg := &runConfig{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		lookupEnv: os.LookupEnv,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.name == "" {
		cfg.name = nameutil.ToolName(os.Args[0])
	}
	if cfg.logger == nil {
		cfg.logger = logx.Discard()
	}
	return cfg
}

// Run dispatches argv to tool and returns the process exit status. Every
// failure is reported on the configured error writer.
func Run(ctx context.Context, tool Tool, argv []string, opts ...RunOption) int {
	cfg := newRunConfig(opts)
	err := execute(ctx, tool, argv, cfg)
	if err != nil {
		report(cfg, err)
	}
	return ExitCode(err)
}

// Execute is Run without reporting: it returns nil on success or after
// printing help, and a *ConfigError, *UsageError or *CommandError otherwise.
func Execute(ctx context.Context, tool Tool, argv []string, opts ...RunOption) error {
	return execute(ctx, tool, argv, newRunConfig(opts))
}

func execute(ctx context.Context, tool Tool, argv []string, cfg *runConfig) error {
	d, err := Describe(cfg.name, tool)
	if err != nil {
		return err
	}
	cfg.logger.WithFields(log.Fields{
		"tool":     d.Name,
		"options":  len(d.options),
		"commands": len(d.commands),
	}).Debug("descriptor built")

	if cfg.defaultsPath != "" {
		if cfg.defaults, err = LoadDefaults(cfg.defaultsPath); err != nil {
			return err
		}
	}
	if cfg.defaults != nil {
		if err := cfg.defaults.Validate(d); err != nil {
			return err
		}
	}

	inv, err := d.Parse(argv)
	if err != nil {
		return err
	}
	if inv.Help {
		return d.WriteUsage(cfg.stdout)
	}

	if err := d.bind(inv, cfg); err != nil {
		return err
	}

	if inv.Command == "" {
		cfg.logger.WithField("tool", d.Name).Debug("tool declares no commands, nothing to run")
		return nil
	}
	c, _ := d.Command(inv.Command)
	return invoke(ctx, c, inv, cfg)
}

// bind assigns option values in increasing precedence: registered default,
// defaults file (global, then command section), environment, argv.
func (d *Descriptor) bind(inv *Invocation, cfg *runConfig) error {
	for _, o := range d.options {
		if err := o.set(o.Default); err != nil {
			return &ConfigError{Problems: []string{fmt.Sprintf("option %q default: %v", o.Field, err)}}
		}
	}

	if cfg.defaults != nil {
		for key, v := range cfg.defaults.Merge(inv.Command) {
			o := d.optIndex[key]
			if err := o.set(v); err != nil {
				return &ConfigError{Problems: []string{fmt.Sprintf("defaults option %q: %v", o.Name, err)}}
			}
		}
	}

	if cfg.envPrefix != "" {
		for _, o := range d.options {
			name := nameutil.ToEnvName(cfg.envPrefix, o.Field)
			raw, ok := cfg.lookupEnv(name)
			if !ok {
				continue
			}
			if err := o.set(raw); err != nil {
				return usageErrorf("invalid value %q in $%s: %v", raw, name, err)
			}
		}
	}

	for name, v := range inv.Options {
		o, _ := d.Option(name)
		if err := o.set(v); err != nil {
			return usageErrorf("invalid value for --%s: %v", name, err)
		}
	}
	return nil
}

func invoke(ctx context.Context, c *Command, inv *Invocation, cfg *runConfig) (err error) {
	entry := cfg.logger.WithField("command", c.Name)
	cctx := &Context{
		Context: ctx,
		Command: c.Name,
		Args:    inv.Args,
		Stdout:  cfg.stdout,
		Stderr:  cfg.stderr,
		Log:     entry,
	}

	start := time.Now()
	entry.WithField("args", inv.Args).Debug("dispatching")
	defer func() {
		if r := recover(); r != nil {
			err = &CommandError{Command: c.Name, Err: fmt.Errorf("panic: %v", r)}
		}
		entry.WithFields(log.Fields{
			"duration": time.Since(start),
			"failed":   err != nil,
		}).Debug("command finished")
	}()

	if herr := c.handler(cctx); herr != nil {
		return &CommandError{Command: c.Name, Err: herr}
	}
	return nil
}

// report prints err the way the user should see it.
func report(cfg *runConfig, err error) {
	w := cfg.stderr
	fmt.Fprintf(w, "Error: %s\n", err)

	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintf(w, "Run '%s --help' for usage.\n", cfg.name)
		return
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return
	}
	// Wrapped causes whose text is not already part of the message.
	shown := err.Error()
	for cause := errors.Unwrap(cmdErr.Err); cause != nil; cause = errors.Unwrap(cause) {
		msg := cause.Error()
		if strings.Contains(shown, msg) {
			continue
		}
		fmt.Fprintf(w, "  caused by: %s\n", msg)
		shown += msg
	}
}

// Package mcpserve exposes a dispatcher tool over the Model Context
// Protocol: every command becomes an MCP tool whose parameters are the
// tool's options plus an "args" string of positional arguments.
package mcpserve

import (
	"bytes"
	"context"
	"fmt"
	"io"
	stdlog "log"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/thellimist/clite/internal/clite"
	"github.com/thellimist/clite/internal/logx"
	"github.com/thellimist/clite/internal/nameutil"
)

// ArgsParam is the parameter carrying positional arguments, split like a
// shell command line.
const ArgsParam = "args"

// Factory builds a fresh tool writing to stdout and stderr. The returned
// func, when not nil, releases what the tool holds.
type Factory func(stdout, stderr io.Writer) (clite.Tool, func(), error)

// Server serves one tool.
type Server struct {
	name    string
	factory Factory
	desc    *clite.Descriptor
	mcp     *server.MCPServer
	logger  *log.Logger
	runOpts []clite.RunOption
	include []string
	exclude []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the diagnostics logger, also handed to the dispatcher.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithRunOptions adds dispatcher options to every call, e.g. an env prefix
// or a defaults file.
func WithRunOptions(opts ...clite.RunOption) Option {
	return func(s *Server) { s.runOpts = append(s.runOpts, opts...) }
}

// New describes the tool built by factory and registers one MCP tool per
// command.
func New(name, version string, factory Factory, opts ...Option) (*Server, error) {
	s := &Server{name: name, factory: factory, logger: logx.Discard()}
	for _, o := range opts {
		o(s)
	}

	tool, release, err := factory(io.Discard, io.Discard)
	if err != nil {
		return nil, fmt.Errorf("mcpserve: building %s: %w", name, err)
	}
	if release != nil {
		defer release()
	}
	if s.desc, err = clite.Describe(name, tool); err != nil {
		return nil, err
	}

	commands, err := selectCommands(s.desc, s.include, s.exclude)
	if err != nil {
		return nil, err
	}

	s.mcp = server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, c := range commands {
		s.mcp.AddTool(s.toolFor(c), s.handlerFor(c))
	}
	s.logger.WithFields(log.Fields{"tool": name, "commands": len(commands)}).Debug("mcp tools registered")
	return s, nil
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio answers MCP requests read from in until ctx is done or in
// is closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	errLog := s.logger.WriterLevel(log.ErrorLevel)
	defer errLog.Close()

	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(stdlog.New(errLog, "", 0))
	return stdio.Listen(ctx, in, out)
}

// ToolName is the MCP name of a command: its flag spelling with
// underscores.
func ToolName(command string) string {
	return strings.ReplaceAll(command, "-", "_")
}

func paramName(o *clite.Option) string {
	return strings.ReplaceAll(o.Name, "-", "_")
}

func (s *Server) toolFor(c *clite.Command) mcp.Tool {
	desc := c.Usage
	if desc == "" {
		desc = fmt.Sprintf("Run the %s command of %s", c.Name, s.name)
	}
	if c.Default {
		desc += " (default command)"
	}
	opts := []mcp.ToolOption{mcp.WithDescription(desc)}
	for _, o := range s.desc.Options() {
		usage := o.Usage
		if usage == "" {
			usage = "--" + o.Name
		}
		switch o.Kind {
		case clite.KindBool:
			opts = append(opts, mcp.WithBoolean(paramName(o), mcp.Description(usage),
				mcp.DefaultBool(cast.ToBool(o.Default))))
		case clite.KindInt, clite.KindFloat:
			opts = append(opts, mcp.WithNumber(paramName(o), mcp.Description(usage),
				mcp.DefaultNumber(cast.ToFloat64(o.Default))))
		default:
			opts = append(opts, mcp.WithString(paramName(o), mcp.Description(usage),
				mcp.DefaultString(cast.ToString(o.Default))))
		}
	}
	argsDesc := "Positional arguments, split like a shell command line"
	if len(c.ArgNames) > 0 {
		argsDesc += ": <" + strings.Join(c.ArgNames, "> <") + ">"
	}
	opts = append(opts, mcp.WithString(ArgsParam, mcp.Description(argsDesc)))
	return mcp.NewTool(ToolName(c.Name), opts...)
}

func (s *Server) handlerFor(c *clite.Command) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argv, err := s.argv(c, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var stdout, stderr bytes.Buffer
		tool, release, err := s.factory(&stdout, &stderr)
		if err != nil {
			return nil, fmt.Errorf("mcpserve: building %s: %w", s.name, err)
		}
		if release != nil {
			defer release()
		}

		opts := append([]clite.RunOption{
			clite.WithName(s.name),
			clite.WithOutput(&stdout, &stderr),
			clite.WithLogger(s.logger),
		}, s.runOpts...)
		code := clite.Run(ctx, tool, argv, opts...)
		s.logger.WithFields(log.Fields{"command": c.Name, "code": code}).Debug("mcp call finished")

		if code != 0 {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = fmt.Sprintf("%s exited with code %d", c.Name, code)
			}
			return mcp.NewToolResultError(msg), nil
		}
		return mcp.NewToolResultText(stdout.String()), nil
	}
}

// argv turns call arguments into a command line: options as --name=value,
// then the command, then the split positionals.
func (s *Server) argv(c *clite.Command, params map[string]any) ([]string, error) {
	var argv []string
	var unknown []string
	for key, v := range params {
		if key == ArgsParam {
			continue
		}
		o, ok := s.desc.Option(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		str, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", key, err)
		}
		argv = append(argv, "--"+o.Name+"="+str)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown parameter(s): %s", strings.Join(unknown, ", "))
	}
	sort.Strings(argv)

	argv = append(argv, c.Name)
	if raw, ok := params[ArgsParam]; ok && raw != nil {
		line, err := cast.ToStringE(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", ArgsParam, err)
		}
		words, err := nameutil.SplitWords(line)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", ArgsParam, err)
		}
		argv = append(argv, words...)
	}
	return argv, nil
}

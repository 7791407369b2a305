package mcpserve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thellimist/clite/internal/clite"
)

func greeterFactory(stdout, stderr io.Writer) (clite.Tool, func(), error) {
	var (
		name  string
		times int
		loud  bool
	)
	return clite.ToolFunc(func(b *clite.Builder) {
		b.String("name", &name, "world", "who to greet")
		b.Int("times", &times, 1, "")
		b.Bool("loud", &loud, false, "shout")
		b.Command("greet", func(c *clite.Context) error {
			line := strings.TrimSpace("hello " + name + " " + strings.Join(c.Args, " "))
			if loud {
				line = strings.ToUpper(line)
			}
			for range times {
				fmt.Fprintln(c.Stdout, line)
			}
			return nil
		}, clite.WithArgs("suffix"), clite.WithUsage("greet someone"))
		b.Command("failHard", func(*clite.Context) error { return errors.New("boom") })
	}), nil, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New("greeter", "1.0.0", greeterFactory,
		WithRunOptions(clite.WithLookupEnv(func(string) (string, bool) { return "", false })))
	require.NoError(t, err)
	return s
}

func call(t *testing.T, s *Server, tool string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	st := s.MCP().GetTool(tool)
	require.NotNil(t, st, "tool %s", tool)
	var req mcp.CallToolRequest
	req.Params.Name = tool
	req.Params.Arguments = args
	res, err := st.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestNew_OneToolPerCommand(t *testing.T) {
	s := newTestServer(t)
	tools := s.MCP().ListTools()
	require.Len(t, tools, 2)
	require.Contains(t, tools, "greet")
	require.Contains(t, tools, "fail_hard")

	greet := tools["greet"].Tool
	assert.Equal(t, "greet someone", greet.Description)
	props := greet.InputSchema.Properties
	for _, p := range []string{"name", "times", "loud", ArgsParam} {
		assert.Contains(t, props, p)
	}
	assert.Equal(t, "number", props["times"].(map[string]any)["type"])
	assert.Equal(t, "boolean", props["loud"].(map[string]any)["type"])
	assert.Equal(t, "world", props["name"].(map[string]any)["default"])
	assert.Contains(t, props[ArgsParam].(map[string]any)["description"], "<suffix>")
	assert.Contains(t, tools["fail_hard"].Tool.Description, "fail-hard")
}

func TestCall_Defaults(t *testing.T) {
	s := newTestServer(t)
	res := call(t, s, "greet", nil)
	assert.False(t, res.IsError)
	assert.Equal(t, "hello world\n", text(t, res))
}

func TestCall_OptionsAndArgs(t *testing.T) {
	s := newTestServer(t)
	res := call(t, s, "greet", map[string]any{
		"name":    "gopher",
		"times":   float64(2),
		"loud":    true,
		ArgsParam: "'and friends'",
	})
	assert.False(t, res.IsError, text(t, res))
	assert.Equal(t, "HELLO GOPHER AND FRIENDS\nHELLO GOPHER AND FRIENDS\n", text(t, res))
}

func TestCall_Errors(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{"command failure", "fail_hard", nil, "Error: boom"},
		{"unknown parameter", "greet", map[string]any{"bogus": 1, "alsoBad": 2}, "unknown parameter(s): alsoBad, bogus"},
		{"bad number", "greet", map[string]any{"times": 2.5}, "invalid value"},
		{"unterminated args", "greet", map[string]any{ArgsParam: `"open`}, "parameter args"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := call(t, s, tc.tool, tc.args)
			assert.True(t, res.IsError)
			assert.Contains(t, text(t, res), tc.want)
		})
	}
}

func TestCall_FreshToolPerCall(t *testing.T) {
	s := newTestServer(t)
	call(t, s, "greet", map[string]any{"name": "first"})
	res := call(t, s, "greet", nil)
	assert.Equal(t, "hello world\n", text(t, res))
}

func TestHandleMessage(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp := s.MCP().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"greet"`)
	assert.Contains(t, string(raw), `"fail_hard"`)

	resp = s.MCP().HandleMessage(ctx, json.RawMessage(
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"greet","arguments":{"name":"mcp"}}}`))
	raw, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `hello mcp\n`)
}

func TestNew_FactoryError(t *testing.T) {
	_, err := New("broken", "0", func(io.Writer, io.Writer) (clite.Tool, func(), error) {
		return nil, nil, errors.New("no kit")
	})
	assert.ErrorContains(t, err, "no kit")
}

func TestNew_InvalidTool(t *testing.T) {
	_, err := New("broken", "0", func(io.Writer, io.Writer) (clite.Tool, func(), error) {
		return clite.ToolFunc(func(b *clite.Builder) {
			b.Command("help", func(*clite.Context) error { return nil })
			b.Command("help", func(*clite.Context) error { return nil })
		}), nil, nil
	})
	var cfgErr *clite.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestToolName(t *testing.T) {
	assert.Equal(t, "read_file", ToolName("read-file"))
	assert.Equal(t, "main", ToolName("main"))
}

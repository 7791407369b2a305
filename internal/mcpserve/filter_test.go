package mcpserve

import (
	"slices"
	"strings"
	"testing"

	"github.com/thellimist/clite/internal/clite"
)

// ---------------------------------------------------------------------------
// ParseCommandList
// ---------------------------------------------------------------------------

func TestParseCommandList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"basic comma separated", "foo, bar, baz", []string{"foo", "bar", "baz"}},
		{"deduplication preserves order", "foo, bar, foo", []string{"foo", "bar"}},
		{"trim whitespace and skip empty", "  a , b ,  ", []string{"a", "b"}},
		{"empty string", "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseCommandList(tc.input)
			if !slices.Equal(got, tc.want) {
				t.Errorf("ParseCommandList(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// selectCommands
// ---------------------------------------------------------------------------

func fourCommands(t *testing.T) *clite.Descriptor {
	t.Helper()
	noop := func(*clite.Context) error { return nil }
	d, err := clite.Describe("four", clite.ToolFunc(func(b *clite.Builder) {
		b.Command("readFile", noop)
		b.Command("writeFile", noop)
		b.Command("fetch", noop)
		b.Command("ask", noop)
	}))
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	return d
}

func names(cmds []*clite.Command) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.Name)
	}
	return out
}

func TestSelectCommands(t *testing.T) {
	d := fourCommands(t)
	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{"no filter", nil, nil, []string{"read-file", "write-file", "fetch", "ask"}},
		{"include keeps list order", []string{"ask", "read_file"}, nil, []string{"ask", "read-file"}},
		{"include deduplicates spellings", []string{"readFile", "read-file"}, nil, []string{"read-file"}},
		{"exclude", nil, []string{"fetch", "WRITE_FILE"}, []string{"read-file", "ask"}},
		{"exclude ignores unknown names", nil, []string{"nope"}, []string{"read-file", "write-file", "fetch", "ask"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := selectCommands(d, tc.include, tc.exclude)
			if err != nil {
				t.Fatalf("selectCommands: %v", err)
			}
			if !slices.Equal(names(got), tc.want) {
				t.Errorf("selectCommands = %v, want %v", names(got), tc.want)
			}
		})
	}
}

func TestSelectCommandsErrors(t *testing.T) {
	d := fourCommands(t)
	tests := []struct {
		name    string
		include []string
		exclude []string
		want    string
	}{
		{"both lists", []string{"ask"}, []string{"fetch"}, "cannot be combined"},
		{"unknown include with suggestion", []string{"fetc"}, nil, "(did you mean fetch?)"},
		{"unknown include lists available", []string{"zzzzzzzz"}, nil, "available: read-file, write-file, fetch, ask"},
		{"everything excluded", nil, []string{"read-file", "write-file", "fetch", "ask"}, "nothing to serve"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := selectCommands(d, tc.include, tc.exclude)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestNewWithInclude(t *testing.T) {
	s, err := New("greeter", "1.0.0", greeterFactory, WithInclude("greet"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tools := s.MCP().ListTools()
	if len(tools) != 1 || tools["greet"] == nil {
		t.Errorf("tools = %v, want only greet", tools)
	}
}

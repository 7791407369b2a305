//go:build unix

package demo

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thellimist/clite/internal/clite"
	"github.com/thellimist/clite/internal/kit"
	"github.com/thellimist/clite/internal/request"
)

type harness struct {
	dir      string
	out, err bytes.Buffer
	tool     *Tool
}

func newHarness(t *testing.T, stdin string) *harness {
	t.Helper()
	t.Setenv(request.EnvAuthToken, "")
	h := &harness{dir: t.TempDir()}
	k, err := kit.New(kit.Config{
		Stdin:           strings.NewReader(stdin),
		Stdout:          &h.out,
		Stderr:          &h.err,
		NoColor:         true,
		Dir:             h.dir,
		CredentialsFile: filepath.Join(h.dir, "credentials.json"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })
	h.tool = New(k)
	return h
}

func (h *harness) run(argv ...string) int {
	return clite.Run(context.Background(), h.tool, argv,
		clite.WithName("demo"),
		clite.WithOutput(&h.out, &h.err),
		clite.WithLookupEnv(func(string) (string, bool) { return "", false }),
	)
}

func TestHelp(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("--help"))
	help := h.out.String()
	for _, want := range []string{
		"Usage: demo [Options] [--] [command [command args]]",
		"main",
		"[default]",
		"exec-date",
		"cat-grep",
		"read-file <path>",
		"fetch <url> <key>",
		"ask",
		`--web-url`,
		`[default: "none"]`,
		"--verbose",
	} {
		assert.Contains(t, help, want)
	}
}

func TestExecDate(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("--web-url", "https://example.com", "exec_date"), h.err.String())
	assert.Contains(t, h.out.String(), "webUrl=https://example.com verbose=false")
}

func TestVerboseEchoesCommands(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("--verbose", "exec-date"), h.err.String())
	assert.Contains(t, h.err.String(), "> date")
	assert.Contains(t, h.out.String(), "verbose=true")
}

func TestVerboseIsPerRun(t *testing.T) {
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("--verbose", "exec-date"), h.err.String())
	require.Contains(t, h.err.String(), "> date")

	h.out.Reset()
	h.err.Reset()
	require.Equal(t, 0, h.run("exec-date"), h.err.String())
	assert.NotContains(t, h.err.String(), "> date")
	assert.Contains(t, h.out.String(), "verbose=false")
}

func TestReadFile(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "notes.txt"), []byte("line one\nline two\n"), 0o644))
	require.Equal(t, 0, h.run("readFile", "notes.txt"), h.err.String())
	assert.Equal(t, "line one\nline two\n", h.out.String())
}

func TestMainReadsDefaultFile(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "go.mod"), []byte("module example.com/x\n"), 0o644))
	require.Equal(t, 0, h.run(), h.err.String())
	assert.Contains(t, h.out.String(), "webUrl=none")
	assert.True(t, strings.HasSuffix(h.out.String(), "module example.com/x\n"))
}

func TestReadFile_Missing(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("read-file", "nope.txt"))
	assert.Contains(t, h.err.String(), "Error:")
	assert.Contains(t, h.err.String(), "nope.txt")
}

func TestCatGrep(t *testing.T) {
	passwd, err := os.ReadFile("/etc/passwd")
	if err != nil || !strings.Contains(string(passwd), "/root") {
		t.Skip("no /root entry in /etc/passwd")
	}
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("cat-grep"), h.err.String())
	assert.Contains(t, h.out.String(), "/root")
}

func jsonServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"typescript":{"semiColons":"asi"},"lineWidth":80}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := jsonServer(t)

	h := newHarness(t, "")
	require.Equal(t, 0, h.run("fetch", srv.URL, "typescript"), h.err.String())
	assert.Equal(t, "typescript {\"semiColons\":\"asi\"}\n", h.out.String())

	h = newHarness(t, "")
	require.Equal(t, 0, h.run("--web-url", srv.URL, "fetch"), h.err.String())
	assert.Contains(t, h.out.String(), `"lineWidth": 80`)
}

func TestFetch_Errors(t *testing.T) {
	srv := jsonServer(t)

	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("fetch"))
	assert.Contains(t, h.err.String(), "no URL")

	h = newHarness(t, "")
	assert.Equal(t, 1, h.run("fetch", srv.URL, "missing"))
	assert.Contains(t, h.err.String(), `key "missing" not found`)
}

func TestAsk(t *testing.T) {
	h := newHarness(t, "hunter2\n\n3\n1,2\n")
	require.Equal(t, 0, h.run("ask"), h.err.String())
	out := h.out.String()
	assert.Contains(t, out, "Password 7 characters\n")
	assert.Contains(t, out, "Colour Blue\n")
	assert.Contains(t, out, "Days Monday, Wednesday\n")
}

func TestAsk_Declined(t *testing.T) {
	h := newHarness(t, "x\nn\n")
	require.Equal(t, 0, h.run("ask"), h.err.String())
	assert.Contains(t, h.err.String(), "Stopped at your request.")
	assert.NotContains(t, h.out.String(), "Colour")
}

func TestAsk_Aborted(t *testing.T) {
	h := newHarness(t, "")
	assert.Equal(t, 1, h.run("ask"))
	assert.Contains(t, h.err.String(), "aborted")
}

func TestTour(t *testing.T) {
	srv := jsonServer(t)
	h := newHarness(t, "")

	err := Tour(context.Background(), h.tool.kit, TourOptions{URL: srv.URL, Key: "lineWidth", Step: 40 * time.Millisecond})
	require.NoError(t, err, h.err.String())

	out := h.out.String()
	for _, want := range []string{
		"filter result : beta",
		"apiVersion : v1",
		"line first",
		"line second",
		"printed",
		"hello",
		"/etc is dir : true",
		"sh exists : true",
		"lineWidth from " + srv.URL + " : 80",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, h.err.String(), "timed out")
	assert.Contains(t, h.err.String(), "failed after 3 attempts")
}

func TestFetch_EmptyURLArgUsesOption(t *testing.T) {
	srv := jsonServer(t)
	h := newHarness(t, "")
	require.Equal(t, 0, h.run("--web-url", srv.URL, "fetch", "", "lineWidth"), h.err.String())
	assert.Equal(t, "lineWidth 80\n", h.out.String())
}

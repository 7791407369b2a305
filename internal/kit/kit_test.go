package kit

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thellimist/clite/internal/progress"
	"github.com/thellimist/clite/internal/request"
)

type streams struct {
	out, err bytes.Buffer
}

func testConfig(t *testing.T, s *streams) Config {
	t.Helper()
	t.Setenv(request.EnvAuthToken, "")
	return Config{
		Stdin:           strings.NewReader("y\n"),
		Stdout:          &s.out,
		Stderr:          &s.err,
		NoColor:         true,
		Dir:             t.TempDir(),
		CredentialsFile: filepath.Join(t.TempDir(), "credentials.json"),
	}
}

func TestNew_WiresStreams(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	k, err := New(cfg)
	require.NoError(t, err)
	defer k.Close()

	assert.Equal(t, cfg.Dir, k.Shell.Dir())

	k.Term.LogStep("Hello", "kit")
	assert.Equal(t, "Hello kit\n", s.out.String())

	ok, err := k.Prompt.Confirm("continue?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	k.Term.LogWarn("careful")
	assert.Equal(t, "careful\n", s.err.String())
}

func TestNew_LogLevel(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.LogLevel = "debug"
	k, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, k.Log.GetLevel())
	assert.Contains(t, s.err.String(), "credentials loaded")
}

func TestProgress_WritesToStderr(t *testing.T) {
	var s streams
	k, err := New(testConfig(t, &s))
	require.NoError(t, err)

	bar := k.Progress("copying", progress.WithLength(2), progress.WithLive(false))
	bar.Increment()
	bar.Increment()
	bar.Finish()

	assert.Empty(t, s.out.String())
	assert.Contains(t, s.err.String(), "copying")
	assert.Contains(t, s.err.String(), "2/2")
}

func TestNew_HostCredentials(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	var s streams
	cfg := testConfig(t, &s)
	creds := &request.Credentials{Version: 1}
	creds.SetToken(u.Host, "stored")
	require.NoError(t, request.SaveCredentials(cfg.CredentialsFile, creds))

	k, err := New(cfg)
	require.NoError(t, err)
	_, err = k.HTTP.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored", auth)
}

func TestNew_DefaultToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	var s streams
	cfg := testConfig(t, &s)
	cfg.AuthToken = "explicit"
	k, err := New(cfg)
	require.NoError(t, err)
	_, err = k.HTTP.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer explicit", auth)
}

func TestNew_BadCredentials(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	require.NoError(t, os.WriteFile(cfg.CredentialsFile, []byte(`{"hosts":{"x":{"type":"nope"}}}`), 0o600))
	_, err := New(cfg)
	assert.ErrorContains(t, err, "unknown auth type")

	require.NoError(t, os.WriteFile(cfg.CredentialsFile, []byte("{"), 0o600))
	_, err = New(cfg)
	assert.ErrorContains(t, err, "parsing credentials")
}

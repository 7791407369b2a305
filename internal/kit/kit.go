// Package kit bundles the services a tool command works with: shell,
// terminal logger, diagnostics logger, HTTP client, prompts and progress
// indicators. Build one Kit per process and hand it to the tool.
package kit

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/thellimist/clite/internal/logx"
	"github.com/thellimist/clite/internal/progress"
	"github.com/thellimist/clite/internal/prompt"
	"github.com/thellimist/clite/internal/request"
	"github.com/thellimist/clite/internal/shell"
	"github.com/thellimist/clite/internal/term"
)

// Config selects the streams and behavior of a Kit. Zero values mean the
// process streams, the default log level and colors when supported.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LogOutput receives diagnostics. Defaults to Stderr.
	LogOutput    io.Writer
	LogLevel     string
	NoColor      bool
	Dir          string
	PrintCommand bool

	// AuthToken is sent as a bearer token to hosts without a stored
	// credential. Empty falls back to $CLITE_AUTH_TOKEN.
	AuthToken string
	// CredentialsFile holds per-host credentials. Empty means
	// request.DefaultCredentialsPath.
	CredentialsFile string
	HTTPTimeout     time.Duration
}

// Kit is the service bundle.
type Kit struct {
	Shell  *shell.Shell
	Term   *term.Logger
	Log    *log.Logger
	HTTP   *request.Client
	Prompt *prompt.Prompter

	stderr  io.Writer
	noColor bool
}

// New builds a Kit. It fails only when the credentials file is unreadable.
func New(cfg Config) (*Kit, error) {
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.LogOutput == nil {
		cfg.LogOutput = cfg.Stderr
	}
	noColor := cfg.NoColor || os.Getenv("NO_COLOR") != ""

	logger := logx.New(cfg.LogOutput, cfg.LogLevel)

	var termOpts []term.Option
	var promptOpts []prompt.Option
	if noColor {
		termOpts = append(termOpts, term.NoColor())
		promptOpts = append(promptOpts, prompt.NoColor())
	}
	tl := term.New(cfg.Stdout, cfg.Stderr, termOpts...)

	httpOpts := []request.Option{request.WithLogger(logger)}
	if cfg.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, request.WithTimeout(cfg.HTTPTimeout))
	}
	if token := request.LookupToken(cfg.AuthToken, ""); token != "" {
		httpOpts = append(httpOpts, request.WithAuth(&request.Bearer{Token: token}))
	}
	credsPath := cfg.CredentialsFile
	if credsPath == "" {
		credsPath = request.DefaultCredentialsPath()
	}
	if credsPath != "" {
		creds, err := request.LoadCredentials(credsPath)
		if err != nil {
			return nil, fmt.Errorf("kit: %w", err)
		}
		providers, err := creds.Providers()
		if err != nil {
			return nil, fmt.Errorf("kit: credentials %s: %w", credsPath, err)
		}
		for host, p := range providers {
			httpOpts = append(httpOpts, request.WithHostAuth(host, p))
		}
		logger.WithFields(log.Fields{"path": credsPath, "hosts": len(providers)}).Debug("credentials loaded")
	}

	return &Kit{
		Shell: shell.New(
			shell.WithDir(cfg.Dir),
			shell.WithStdin(cfg.Stdin),
			shell.WithOutput(cfg.Stdout, cfg.Stderr),
			shell.WithTerm(tl),
			shell.WithLogger(logger),
			shell.WithPrintCommand(cfg.PrintCommand),
		),
		Term:    tl,
		Log:     logger,
		HTTP:    request.New(httpOpts...),
		Prompt:  prompt.New(cfg.Stdin, cfg.Stdout, promptOpts...),
		stderr:  cfg.Stderr,
		noColor: noColor,
	}, nil
}

// Progress starts a progress indicator on the error stream.
func (k *Kit) Progress(message string, opts ...progress.Option) *progress.Bar {
	if k.noColor {
		opts = append([]progress.Option{progress.WithNoColor()}, opts...)
	}
	return progress.New(k.stderr, message, opts...)
}

// Close releases the HTTP client.
func (k *Kit) Close() error {
	return k.HTTP.Close()
}

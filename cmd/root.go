package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thellimist/clite/internal/kit"
)

var appVersion = "dev"

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	appVersion = v
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	logLevel string
	noColor  bool
}

func (g *globalFlags) kitConfig(cmd *cobra.Command) kit.Config {
	return kit.Config{
		Stdin:    cmd.InOrStdin(),
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
		LogLevel: g.logLevel,
		NoColor:  g.noColor,
	}
}

// NewRootCmd builds the clite command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "clite",
		Short: "Run declarative command-line tools",
		Long: `clite dispatches command lines to tools that declare their options and
commands, and ships the services those commands use: a shell, colored
logs, progress bars, HTTP requests and prompts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "", "diagnostics level: trace, debug, info, warn, error (default $CLITE_LOG_LEVEL or warn)")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newToolCmd(g),
		newTourCmd(g),
		newServeMCPCmd(g),
		newLoginCmd(),
		newVersionCmd(),
	)
	root.SetVersionTemplate(fmt.Sprintf("clite v%s\n", appVersion))
	root.Version = appVersion
	return root
}

// Execute runs the command tree with args. SIGINT and SIGTERM cancel the
// running command.
func Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// ExitError carries an exit status whose cause has already been reported.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode returns the status to exit with.
func (e *ExitError) ExitCode() int { return e.Code }

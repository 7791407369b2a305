package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thellimist/clite/internal/clite"
	"github.com/thellimist/clite/internal/demo"
	"github.com/thellimist/clite/internal/logx"
	"github.com/thellimist/clite/internal/mcpserve"
)

func newServeMCPCmd(g *globalFlags) *cobra.Command {
	var include, exclude string
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the demo tool over MCP on stdin/stdout",
		Long: `Serve the demo tool as an MCP server speaking JSON-RPC on stdin and
stdout. Every command becomes an MCP tool; diagnostics go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.kitConfig(cmd)
			// stdin carries the protocol; prompts see end of input.
			cfg.Stdin = strings.NewReader("")
			logger := logx.New(cmd.ErrOrStderr(), g.logLevel)

			srv, err := mcpserve.New("clite-demo", appVersion, demo.Factory(cfg),
				mcpserve.WithLogger(logger),
				mcpserve.WithInclude(mcpserve.ParseCommandList(include)...),
				mcpserve.WithExclude(mcpserve.ParseCommandList(exclude)...),
				mcpserve.WithRunOptions(
					clite.WithEnvPrefix(EnvPrefix),
					clite.WithDefaultsFile(os.Getenv(EnvDefaultsFile)),
				),
			)
			if err != nil {
				return err
			}
			return srv.ServeStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVar(&include, "include-commands", "", "only serve these commands (comma-separated)")
	f.StringVar(&exclude, "exclude-commands", "", "do not serve these commands (comma-separated)")
	cmd.MarkFlagsMutuallyExclusive("include-commands", "exclude-commands")
	return cmd
}

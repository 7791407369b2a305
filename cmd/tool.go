package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thellimist/clite/internal/clite"
	"github.com/thellimist/clite/internal/demo"
	"github.com/thellimist/clite/internal/kit"
)

// EnvDefaultsFile names the YAML file holding option defaults for the demo
// tool.
const EnvDefaultsFile = "CLITE_DEFAULTS_FILE"

// EnvPrefix prefixes the environment variables bound to demo options.
const EnvPrefix = "CLITE_DEMO"

func newToolCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tool [options] [--] [command [args...]]",
		Short: "Run the demo tool through the dispatcher",
		Long: `Run the demo tool. Everything after "tool" is handed to the dispatcher;
run "clite tool --help" for its commands and options.

Option defaults come from $` + EnvDefaultsFile + ` (YAML) and from
` + EnvPrefix + `_<OPTION> environment variables.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			args = g.consume(args)
			k, err := kit.New(g.kitConfig(cmd))
			if err != nil {
				return err
			}
			defer k.Close()

			code := clite.Run(cmd.Context(), demo.New(k), args, dispatchOptions(cmd, k)...)
			if code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
}

func dispatchOptions(cmd *cobra.Command, k *kit.Kit) []clite.RunOption {
	return []clite.RunOption{
		clite.WithName("clite tool"),
		clite.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		clite.WithLogger(k.Log),
		clite.WithEnvPrefix(EnvPrefix),
		clite.WithDefaultsFile(os.Getenv(EnvDefaultsFile)),
	}
}

// consume strips the global flags that lead args. Flag parsing is off for
// the tool command, so "clite --log-level debug tool" arrives here with the
// flag still in place.
func (g *globalFlags) consume(args []string) []string {
	for len(args) > 0 {
		name, value, hasValue := strings.Cut(args[0], "=")
		switch name {
		case "--log-level":
			if hasValue {
				g.logLevel = value
				args = args[1:]
				continue
			}
			if len(args) < 2 {
				return args
			}
			g.logLevel = args[1]
			args = args[2:]
		case "--no-color":
			g.noColor = !hasValue || value == "true"
			args = args[1:]
		default:
			return args
		}
	}
	return args
}

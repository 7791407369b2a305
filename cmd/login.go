package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thellimist/clite/internal/prompt"
	"github.com/thellimist/clite/internal/request"
)

func newLoginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login <host>",
		Short: "Store a bearer token for a host in the credentials file",
		Long: `Store a bearer token used by HTTP requests to <host> (host or host:port).
The token comes from --token, then $` + request.EnvAuthToken + `, then a masked prompt.
The file is $` + request.EnvCredentialsFile + ` or ~/.clite/credentials.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host := args[0]
			token = request.LookupToken(token, "")
			if token == "" {
				p := prompt.New(cmd.InOrStdin(), cmd.ErrOrStderr())
				var err error
				if token, err = p.Input("token for "+host+": ", true); err != nil {
					return err
				}
			}
			if token == "" {
				return fmt.Errorf("login: empty token for %s", host)
			}

			path := request.DefaultCredentialsPath()
			if path == "" {
				return fmt.Errorf("login: no home directory, set $%s", request.EnvCredentialsFile)
			}
			creds, err := request.LoadCredentials(path)
			if err != nil {
				return err
			}
			creds.SetToken(host, token)
			if err := request.SaveCredentials(path, creds); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved token for %s to %s\n", host, path)
			return err
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token to store")
	return cmd
}

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/thellimist/clite/internal/demo"
	"github.com/thellimist/clite/internal/kit"
)

func newTourCmd(g *globalFlags) *cobra.Command {
	var opts demo.TourOptions
	cmd := &cobra.Command{
		Use:   "tour",
		Short: "Walk through the shell, log, progress, path and request services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := kit.New(g.kitConfig(cmd))
			if err != nil {
				return err
			}
			defer k.Close()
			return demo.Tour(cmd.Context(), k, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.URL, "url", "", "JSON document fetched in the request step (skipped when empty)")
	f.StringVar(&opts.Key, "key", "", "key printed from the fetched document")
	f.DurationVar(&opts.Step, "step", 200*time.Millisecond, "base delay of the sleep, timeout and progress steps")
	return cmd
}

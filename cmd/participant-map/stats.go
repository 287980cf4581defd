package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/dataset"
	"github.com/i474232898/participant-map/internal/render"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the per-city participant table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			path := opts.resolveDataPath()
			d, err := dataset.Load(path)
			if err != nil {
				log.Printf("ERROR: failed to read dataset %s, showing empty table: %v", path, err)
				d = &dataset.Dataset{}
			}

			agg := atlas.Aggregate(d.Participants, d.Cities)
			for _, sk := range agg.Skipped {
				log.Printf("participant #%d %q skipped: %s", sk.Index, sk.Name, sk.Reason)
			}

			styled := !plain && isTerminal(os.Stdout)
			fmt.Fprint(cmd.OutOrStdout(), render.CityTable(agg.Counts, styled))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colors and rounded borders")
	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

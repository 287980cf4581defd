package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/participant-map/internal/config"
)

// rootOptions carries the persistent flags down to the subcommands.
type rootOptions struct {
	dataPath string
}

// resolveDataPath prefers --data over DATA_PATH.
func (o *rootOptions) resolveDataPath() string {
	if o.dataPath != "" {
		return o.dataPath
	}
	return config.DataPath()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "participant-map",
		Short: "Heatmap of where participants come from",
		Long: `Aggregates a JSON dataset of participants and their cities into a
per-city table and a heatmap served to the browser, and maintains that
dataset from the command line.`,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.dataPath, "data", "d", "", "Dataset file path (default $DATA_PATH or data/data.json)")

	root.AddCommand(
		newServeCmd(opts),
		newAppendCmd(opts),
		newStatsCmd(opts),
		newGeocodeCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

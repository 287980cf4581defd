package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/i474232898/participant-map/internal/config"
	"github.com/i474232898/participant-map/internal/dataset"
	"github.com/i474232898/participant-map/internal/geocode"
)

func newGeocodeCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Fill in coordinates of cities still at [0,0]",
		Long: `Looks up every city that still carries the placeholder position with
Open-Meteo and, when GEOCODER_API_KEY is set, Google, then rewrites the dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path := opts.resolveDataPath()

			d, err := dataset.Load(path)
			if err != nil {
				log.Printf("ERROR: failed to read dataset %s: %v", path, err)
				return err
			}

			pending := d.PlaceholderCities()
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All cities have coordinates.")
				return nil
			}

			httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
			chain := geocode.Chain{geocode.NewOpenMeteoProvider(httpClient)}
			if cfg.GeocoderAPIKey != "" {
				chain = append(chain, geocode.NewGoogleProvider(cfg.GeocoderAPIKey))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := geocode.Fill(ctx, d, chain)
			if err != nil {
				return fmt.Errorf("geocoding interrupted: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, c := range res.Filled {
				fmt.Fprintf(out, "%s: %.4f, %.4f\n", c.Name, c.Coordinates.Lng(), c.Coordinates.Lat())
			}
			for _, f := range res.Failed {
				fmt.Fprintf(out, "%s: (needs coordinates) %v\n", f.City.Name, f.Err)
			}

			if dryRun || len(res.Filled) == 0 {
				return nil
			}
			if err := dataset.Save(path, d); err != nil {
				log.Printf("ERROR: failed to write dataset %s: %v", path, err)
				return err
			}
			fmt.Fprintf(out, "Updated %d of %d cities in %s\n", len(res.Filled), len(pending), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the lookups without writing the dataset")
	return cmd
}

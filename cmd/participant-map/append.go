package main

import (
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/i474232898/participant-map/internal/dataset"
)

func newAppendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "append <participant-name> <city-name> [age]",
		Short: "Add a participant to the dataset",
		Long: fmt.Sprintf(`Appends a participant to the dataset file. The city is matched ignoring
case; an unknown city is created with placeholder coordinates [0,0] so it
can be filled in later (see the geocode command). Age defaults to %d.`, dataset.DefaultAge),
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			age := dataset.DefaultAge
			if len(args) == 3 {
				n, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid age %q: must be a whole number", args[2])
				}
				age = n
			}

			req := dataset.AppendRequest{Name: args[0], City: args[1], Age: age}
			return runAppend(cmd, opts.resolveDataPath(), req)
		},
	}
}

func runAppend(cmd *cobra.Command, path string, req dataset.AppendRequest) error {
	d, err := dataset.Load(path)
	if err != nil {
		cmd.SilenceUsage = true
		log.Printf("ERROR: failed to read dataset %s: %v", path, err)
		return err
	}

	res, err := d.AppendParticipant(req)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if err := dataset.Save(path, d); err != nil {
		log.Printf("ERROR: failed to write dataset %s: %v", path, err)
		return err
	}

	suffix := ""
	if res.NeedsCoordinates() {
		suffix = " (needs coordinates)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Successfully added:")
	fmt.Fprintf(out, "Participant: %s\n", res.Participant.Name)
	fmt.Fprintf(out, "Age: %d\n", res.Participant.Age)
	fmt.Fprintf(out, "City: %s%s\n", res.City.Name, suffix)
	return nil
}

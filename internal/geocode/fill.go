package geocode

import (
	"context"
	"fmt"
	"log"

	"github.com/i474232898/participant-map/internal/dataset"
)

// Failure is a city the provider could not resolve.
type Failure struct {
	City dataset.City
	Err  error
}

// FillResult lists what Fill changed.
type FillResult struct {
	Filled []dataset.City
	Failed []Failure
}

// Fill replaces the placeholder position of every city in d with the one
// returned by p. Cities that cannot be resolved keep the placeholder. Only a
// cancelled context aborts the run.
func Fill(ctx context.Context, d *dataset.Dataset, p Provider) (FillResult, error) {
	var res FillResult

	for i := range d.Cities {
		city := &d.Cities[i]
		if !city.NeedsCoordinates() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		coords, err := p.Geocode(ctx, city.Name)
		if err == nil && (coords.IsPlaceholder() || !coords.Valid()) {
			err = fmt.Errorf("%s returned unusable position %v", p.Name(), coords)
		}
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Printf("geocode: %s: %v", city, err)
			res.Failed = append(res.Failed, Failure{City: *city, Err: err})
			continue
		}

		city.Coordinates = coords
		log.Printf("geocode: %s -> %v", city, coords)
		res.Filled = append(res.Filled, *city)
	}

	return res, nil
}

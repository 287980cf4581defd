// Package geocode looks up coordinates for cities created with the
// placeholder position.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/i474232898/participant-map/internal/dataset"
)

var (
	ErrNotFound = errors.New("city not found")
	ErrNoAPIKey = errors.New("geocoder api key not configured")
)

// Provider resolves a city name to a [longitude, latitude] position.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, city string) (dataset.Coordinates, error)
}

// Chain asks each provider in turn and returns the first answer.
type Chain []Provider

func (c Chain) Name() string {
	return "chain"
}

func (c Chain) Geocode(ctx context.Context, city string) (dataset.Coordinates, error) {
	if len(c) == 0 {
		return dataset.Coordinates{}, fmt.Errorf("%w: no providers configured", ErrNotFound)
	}

	var errs []error
	for _, p := range c {
		coords, err := p.Geocode(ctx, city)
		if err == nil {
			return coords, nil
		}
		if ctx.Err() != nil {
			return dataset.Coordinates{}, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return dataset.Coordinates{}, errors.Join(errs...)
}

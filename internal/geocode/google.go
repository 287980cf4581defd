package geocode

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/participant-map/internal/common"
	"github.com/i474232898/participant-map/internal/dataset"
)

// geocoder keeps the key in a package variable
var apiKeyMu sync.Mutex

// GoogleProvider implements Provider with the Google Geocoding API.
type GoogleProvider struct {
	name    string
	apiKey  string
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
	lookup  func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleProvider(apiKey string) *GoogleProvider {
	return &GoogleProvider{
		name:    "google",
		apiKey:  apiKey,
		backoff: defaultBackoff,
		circuit: newCircuitBreaker("google"),
		lookup:  geocoder.Geocoding,
	}
}

func (p *GoogleProvider) Name() string {
	return p.name
}

func (p *GoogleProvider) Geocode(ctx context.Context, city string) (dataset.Coordinates, error) {
	if p.apiKey == "" {
		return dataset.Coordinates{}, ErrNoAPIKey
	}

	return callWithResilience(ctx, p.backoff, p.circuit, func(ctx context.Context) (dataset.Coordinates, error) {
		apiKeyMu.Lock()
		geocoder.ApiKey = p.apiKey
		loc, err := p.lookup(geocoder.Address{City: city})
		apiKeyMu.Unlock()

		if err != nil {
			if common.HasAny(strings.ToLower(err.Error()), "zero_results", "no results", "empty results") {
				return dataset.Coordinates{}, fmt.Errorf("%w: %q", ErrNotFound, city)
			}
			return dataset.Coordinates{}, fmt.Errorf("google geocoding failed: %w", err)
		}
		return dataset.Coordinates{loc.Longitude, loc.Latitude}, nil
	})
}

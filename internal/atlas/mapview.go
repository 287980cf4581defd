package atlas

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/participant-map/internal/dataset"
)

// Bounds is a southwest/northeast corner pair in [lng, lat] order.
type Bounds struct {
	SouthWest dataset.Coordinates
	NorthEast dataset.Coordinates
}

// MarshalJSON encodes the bounds the way the renderer's maxBounds option takes them.
func (b Bounds) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]dataset.Coordinates{b.SouthWest, b.NorthEast})
}

// Contains reports whether c lies inside b, edges included.
func (b Bounds) Contains(c dataset.Coordinates) bool {
	return c.Lng() >= b.SouthWest.Lng() && c.Lng() <= b.NorthEast.Lng() &&
		c.Lat() >= b.SouthWest.Lat() && c.Lat() <= b.NorthEast.Lat()
}

// MapView is everything the map renderer needs before data is attached.
type MapView struct {
	Center    dataset.Coordinates `json:"center"`
	Zoom      float64             `json:"zoom" validate:"gte=0,lte=24"`
	StyleURL  string              `json:"style" validate:"required,url"`
	MaxBounds *Bounds             `json:"maxBounds,omitempty"`
	Paint     HeatmapPaint        `json:"paint"`
}

// ParseCoordinates reads "lng,lat".
func ParseCoordinates(raw string) (dataset.Coordinates, error) {
	vals, err := parseFloats(raw, 2)
	if err != nil {
		return dataset.Coordinates{}, err
	}
	c := dataset.Coordinates{vals[0], vals[1]}
	if !c.Valid() {
		return dataset.Coordinates{}, fmt.Errorf("coordinates %q out of range", raw)
	}
	return c, nil
}

// ParseBounds reads "swLng,swLat,neLng,neLat".
func ParseBounds(raw string) (Bounds, error) {
	vals, err := parseFloats(raw, 4)
	if err != nil {
		return Bounds{}, err
	}
	b := Bounds{
		SouthWest: dataset.Coordinates{vals[0], vals[1]},
		NorthEast: dataset.Coordinates{vals[2], vals[3]},
	}
	if !b.SouthWest.Valid() || !b.NorthEast.Valid() {
		return Bounds{}, fmt.Errorf("bounds %q out of range", raw)
	}
	if b.SouthWest.Lng() > b.NorthEast.Lng() || b.SouthWest.Lat() > b.NorthEast.Lat() {
		return Bounds{}, fmt.Errorf("bounds %q: southwest corner must precede northeast corner", raw)
	}
	return b, nil
}

func parseFloats(raw string, n int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %q", n, raw)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

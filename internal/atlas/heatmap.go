package atlas

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidStops is a configuration error in the heatmap color ramp.
var ErrInvalidStops = errors.New("invalid heatmap color stops")

// Stop is one point of the heatmap color interpolation.
type Stop struct {
	Density float64
	Color   string
}

// MarshalJSON encodes a stop as a [density, color] pair.
func (s Stop) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{s.Density, s.Color})
}

// Stops is an ordered color ramp.
type Stops []Stop

// DefaultStops is the blue-to-red ramp the map uses unless configured otherwise.
var DefaultStops = Stops{
	{0, "rgba(0, 0, 255, 0)"},
	{0.2, "rgba(0, 0, 255, 0.2)"},
	{0.4, "rgba(0, 255, 255, 0.4)"},
	{0.6, "rgba(0, 255, 0, 0.6)"},
	{0.8, "rgba(255, 255, 0, 0.8)"},
	{1, "rgba(255, 0, 0, 1)"},
}

// BuildStops converts an unordered density->color mapping, with densities as
// text, into a validated ascending ramp.
func BuildStops(colorMap map[string]string) (Stops, error) {
	stops := make(Stops, 0, len(colorMap))
	for key, color := range colorMap {
		d, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: density %q is not a number", ErrInvalidStops, key)
		}
		stops = append(stops, Stop{Density: d, Color: color})
	}

	stops = stops.Sorted()
	if err := stops.Validate(); err != nil {
		return nil, err
	}
	return stops, nil
}

// Sorted returns a copy ordered by ascending density. Sorting sorted stops is a no-op.
func (s Stops) Sorted() Stops {
	out := make(Stops, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Density < out[j].Density
	})
	return out
}

// Validate requires at least two stops, densities in [0,1] that strictly
// increase, and a color on every stop.
func (s Stops) Validate() error {
	if len(s) < 2 {
		return fmt.Errorf("%w: need at least 2 stops, got %d", ErrInvalidStops, len(s))
	}
	for i, st := range s {
		if !(st.Density >= 0 && st.Density <= 1) {
			return fmt.Errorf("%w: density %v outside [0,1]", ErrInvalidStops, st.Density)
		}
		if strings.TrimSpace(st.Color) == "" {
			return fmt.Errorf("%w: density %v has no color", ErrInvalidStops, st.Density)
		}
		if i > 0 && st.Density <= s[i-1].Density {
			if st.Density == s[i-1].Density {
				return fmt.Errorf("%w: duplicate density %v", ErrInvalidStops, st.Density)
			}
			return fmt.Errorf("%w: densities not ascending at %v", ErrInvalidStops, st.Density)
		}
	}
	return nil
}

// Flatten returns [d0, c0, d1, c1, ...] as used by an interpolate expression.
func (s Stops) Flatten() []any {
	out := make([]any, 0, len(s)*2)
	for _, st := range s {
		out = append(out, st.Density, st.Color)
	}
	return out
}

// ColorExpression builds the renderer's linear interpolation over heatmap density.
func (s Stops) ColorExpression() []any {
	expr := []any{"interpolate", []any{"linear"}, []any{"heatmap-density"}}
	return append(expr, s.Flatten()...)
}

// ParseStops reads a ramp from configuration. A JSON array of [density, color]
// pairs is taken in the given order and only validated; a JSON object keyed by
// density is sorted first.
func ParseStops(raw string) (Stops, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "["):
		var pairs [][2]any
		if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStops, err)
		}
		stops := make(Stops, 0, len(pairs))
		for _, p := range pairs {
			d, ok := p[0].(float64)
			if !ok {
				return nil, fmt.Errorf("%w: density %v is not a number", ErrInvalidStops, p[0])
			}
			c, ok := p[1].(string)
			if !ok {
				return nil, fmt.Errorf("%w: color %v is not a string", ErrInvalidStops, p[1])
			}
			stops = append(stops, Stop{Density: d, Color: c})
		}
		if err := stops.Validate(); err != nil {
			return nil, err
		}
		return stops, nil

	case strings.HasPrefix(raw, "{"):
		var m map[string]string
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidStops, err)
		}
		return BuildStops(m)

	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrInvalidStops)
	}
}

// HeatmapPaint holds the static paint properties of the heatmap layer.
type HeatmapPaint struct {
	Weight    float64 `validate:"gte=0"`
	Intensity float64 `validate:"gte=0"`
	Radius    float64 `validate:"gt=0"`
	Opacity   float64 `validate:"gte=0,lte=1"`
	Stops     Stops
}

// DefaultHeatmapPaint matches the layer the map has always drawn.
func DefaultHeatmapPaint() HeatmapPaint {
	return HeatmapPaint{
		Weight:    1,
		Intensity: 1,
		Radius:    30,
		Opacity:   0.8,
		Stops:     DefaultStops,
	}
}

// MarshalJSON renders the paint object of a heatmap layer.
func (p HeatmapPaint) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"heatmap-weight":    p.Weight,
		"heatmap-intensity": p.Intensity,
		"heatmap-color":     p.Stops.ColorExpression(),
		"heatmap-radius":    p.Radius,
		"heatmap-opacity":   p.Opacity,
	})
}

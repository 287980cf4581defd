package atlas

import (
	"time"

	"github.com/i474232898/participant-map/internal/dataset"
)

// ResolvedParticipant is a participant after its city reference has been resolved.
// CityName is empty when only a position is known.
type ResolvedParticipant struct {
	Name        string              `json:"name"`
	CityName    string              `json:"city,omitempty"`
	Coordinates dataset.Coordinates `json:"coordinates"`
}

// CityStat is the per-city row of the participant table.
type CityStat struct {
	City        string              `json:"city"`
	Count       int                 `json:"count"`
	Names       []string            `json:"names"`
	Coordinates dataset.Coordinates `json:"coordinates"`

	// lastSeen is the input index of the participant that gave Count its final value.
	lastSeen int
}

// SkipReason explains why a participant was left out.
type SkipReason string

const (
	SkipUnknownCity SkipReason = "unknown city_id"
	SkipNoReference SkipReason = "no city reference"
	SkipInvalid     SkipReason = "invalid record"
)

// Skip records a participant excluded during resolution.
type Skip struct {
	Index  int        `json:"index"`
	Name   string     `json:"name"`
	Reason SkipReason `json:"reason"`
}

// Geometry is a GeoJSON Point.
type Geometry struct {
	Type        string              `json:"type"`
	Coordinates dataset.Coordinates `json:"coordinates"`
}

// Feature is a GeoJSON Feature carrying one participant.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties map[string]string `json:"properties"`
}

// FeatureCollection is the GeoJSON source handed to the heatmap layer.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection returns an empty, renderable collection.
func NewFeatureCollection() FeatureCollection {
	return FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}

// Aggregation is the result of one pass over the dataset.
type Aggregation struct {
	Counts   []CityStat        `json:"counts"`
	Features FeatureCollection `json:"features"`
	Skipped  []Skip            `json:"skipped,omitempty"`
}

// Total returns the number of participants counted in the city table.
func (a Aggregation) Total() int {
	n := 0
	for _, c := range a.Counts {
		n += c.Count
	}
	return n
}

// Snapshot is an aggregation of a particular dataset load.
type Snapshot struct {
	ID          string         `json:"id"`
	LoadedAt    time.Time      `json:"loadedAt"` // always UTC
	Source      string         `json:"source"`
	Cities      []dataset.City `json:"-"`
	Aggregation Aggregation    `json:"aggregation"`
	LoadError   string         `json:"loadError,omitempty"`
}

// SnapshotSummary is the history view of a snapshot.
type SnapshotSummary struct {
	ID           string    `json:"id"`
	LoadedAt     time.Time `json:"loadedAt"`
	Participants int       `json:"participants"`
	Points       int       `json:"points"`
	Cities       int       `json:"cities"`
	Skipped      int       `json:"skipped"`
}

// Summary condenses a snapshot for history listings.
func (s Snapshot) Summary() SnapshotSummary {
	return SnapshotSummary{
		ID:           s.ID,
		LoadedAt:     s.LoadedAt,
		Participants: s.Aggregation.Total(),
		Points:       len(s.Aggregation.Features.Features),
		Cities:       len(s.Aggregation.Counts),
		Skipped:      len(s.Aggregation.Skipped),
	}
}

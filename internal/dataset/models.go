package dataset

import (
	"encoding/json"
	"fmt"
)

// Coordinates is a [longitude, latitude] pair, the order the map renderer expects.
type Coordinates [2]float64

// Placeholder marks a city whose position is not known yet.
var Placeholder = Coordinates{0, 0}

func (c Coordinates) Lng() float64 { return c[0] }
func (c Coordinates) Lat() float64 { return c[1] }

// IsPlaceholder reports whether c is the "needs coordinates" marker.
func (c Coordinates) IsPlaceholder() bool {
	return c == Placeholder
}

// Valid reports whether both components are inside the WGS84 range.
func (c Coordinates) Valid() bool {
	return c[0] >= -180 && c[0] <= 180 && c[1] >= -90 && c[1] <= 90
}

// City is an entry of the normalized city list.
type City struct {
	ID          int         `json:"id" validate:"gte=0"`
	Name        string      `json:"name" validate:"required"`
	Coordinates Coordinates `json:"coordinates"`
}

// NeedsCoordinates reports whether the city still carries the placeholder position.
func (c City) NeedsCoordinates() bool {
	return c.Coordinates.IsPlaceholder()
}

// Participant is a single record of the dataset. It references its city either
// through CityID or through the inline City/Coordinates fields.
type Participant struct {
	ID          int          `json:"id,omitempty" validate:"gte=0"`
	Name        string       `json:"name" validate:"required"`
	Age         int          `json:"age,omitempty" validate:"gte=0"`
	CityID      *int         `json:"city_id,omitempty"`
	City        string       `json:"city,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// CityRef is either an InlineCity or a CityKey.
type CityRef interface {
	cityRef()
}

// InlineCity is a city embedded directly in a participant record.
type InlineCity struct {
	Name        string
	Coordinates *Coordinates
}

// CityKey is a foreign key into the dataset city list.
type CityKey struct {
	ID int
}

func (InlineCity) cityRef() {}
func (CityKey) cityRef()    {}

// Ref returns the participant's city reference. A city_id takes precedence over
// inline fields; ok is false when the record carries neither.
func (p Participant) Ref() (ref CityRef, ok bool) {
	if p.CityID != nil {
		return CityKey{ID: *p.CityID}, true
	}
	if p.City != "" || p.Coordinates != nil {
		return InlineCity{Name: p.City, Coordinates: p.Coordinates}, true
	}
	return nil, false
}

// Dataset is the whole JSON document.
type Dataset struct {
	Cities       []City        `json:"cities"`
	Participants []Participant `json:"participants"`
}

// UnmarshalJSON keeps both lists non-nil so a rewritten file always carries them.
func (d *Dataset) UnmarshalJSON(b []byte) error {
	type plain Dataset
	var raw plain
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Cities == nil {
		raw.Cities = []City{}
	}
	if raw.Participants == nil {
		raw.Participants = []Participant{}
	}
	*d = Dataset(raw)
	return nil
}

// PlaceholderCities lists cities still waiting for real coordinates.
func (d *Dataset) PlaceholderCities() []City {
	var out []City
	for _, c := range d.Cities {
		if c.NeedsCoordinates() {
			out = append(out, c)
		}
	}
	return out
}

func (c City) String() string {
	return fmt.Sprintf("%s (#%d)", c.Name, c.ID)
}

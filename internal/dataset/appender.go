package dataset

import (
	"fmt"

	"github.com/i474232898/participant-map/internal/common"
)

// DefaultAge is used when the operator does not pass one.
const DefaultAge = 16

// AppendRequest is the validated input of the record appender.
type AppendRequest struct {
	Name string `validate:"required"`
	City string `validate:"required"`
	Age  int    `validate:"gte=1,lte=150"`
}

// AppendResult describes what the appender changed.
type AppendResult struct {
	Participant Participant
	City        City
	CityCreated bool
}

// NeedsCoordinates reports whether the referenced city still has no real position.
func (r AppendResult) NeedsCoordinates() bool {
	return r.CityCreated || r.City.NeedsCoordinates()
}

// FindCity looks a city up by name, ignoring case.
func (d *Dataset) FindCity(name string) (*City, bool) {
	for i := range d.Cities {
		if common.SameName(d.Cities[i].Name, name) {
			return &d.Cities[i], true
		}
	}
	return nil, false
}

// FindOrCreateCity returns the city named name, creating it with the next id and
// placeholder coordinates when it does not exist.
func (d *Dataset) FindOrCreateCity(name string) (City, bool) {
	if c, ok := d.FindCity(name); ok {
		return *c, false
	}

	maxID := 0
	for _, c := range d.Cities {
		maxID = max(maxID, c.ID)
	}

	c := City{
		ID:          maxID + 1,
		Name:        common.NormalizeName(name),
		Coordinates: Placeholder,
	}
	d.Cities = append(d.Cities, c)
	return c, true
}

// NextParticipantID returns max(id)+1, or 1 for an empty dataset.
func (d *Dataset) NextParticipantID() int {
	maxID := 0
	for _, p := range d.Participants {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

// AppendParticipant adds a participant living in req.City, creating the city if needed.
func (d *Dataset) AppendParticipant(req AppendRequest) (AppendResult, error) {
	req.Name = common.NormalizeName(req.Name)
	req.City = common.NormalizeName(req.City)
	if err := validate.Struct(req); err != nil {
		return AppendResult{}, fmt.Errorf("invalid participant: %w", err)
	}

	city, created := d.FindOrCreateCity(req.City)
	cityID := city.ID

	p := Participant{
		ID:     d.NextParticipantID(),
		Name:   req.Name,
		Age:    req.Age,
		CityID: &cityID,
	}
	d.Participants = append(d.Participants, p)

	return AppendResult{
		Participant: p,
		City:        city,
		CityCreated: created,
	}, nil
}

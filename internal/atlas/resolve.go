package atlas

import (
	"log"

	"github.com/i474232898/participant-map/internal/dataset"
)

type resolved struct {
	ResolvedParticipant
	index int
}

// Resolve turns every participant into a ResolvedParticipant. Participants that
// fail validation, whose city_id matches no valid city, or that carry no city
// reference at all are skipped. An inline city without coordinates resolves to
// the placeholder position.
func Resolve(participants []dataset.Participant, cities []dataset.City) ([]ResolvedParticipant, []Skip) {
	rs, skipped := resolveAll(participants, cities)
	out := make([]ResolvedParticipant, len(rs))
	for i, r := range rs {
		out[i] = r.ResolvedParticipant
	}
	return out, skipped
}

func resolveAll(participants []dataset.Participant, cities []dataset.City) ([]resolved, []Skip) {
	// first match wins on duplicate ids; invalid cities are not addressable
	byID := make(map[int]dataset.City, len(cities))
	for _, c := range cities {
		if _, ok := byID[c.ID]; ok {
			continue
		}
		if err := c.Validate(); err != nil {
			log.Printf("atlas: %v", err)
			continue
		}
		byID[c.ID] = c
	}

	var (
		out     = make([]resolved, 0, len(participants))
		skipped []Skip
	)
	for i, p := range participants {
		if err := p.Validate(); err != nil {
			skipped = append(skipped, Skip{Index: i, Name: p.Name, Reason: SkipInvalid})
			continue
		}

		ref, ok := p.Ref()
		if !ok {
			skipped = append(skipped, Skip{Index: i, Name: p.Name, Reason: SkipNoReference})
			continue
		}

		switch ref := ref.(type) {
		case dataset.CityKey:
			city, found := byID[ref.ID]
			if !found {
				skipped = append(skipped, Skip{Index: i, Name: p.Name, Reason: SkipUnknownCity})
				continue
			}
			out = append(out, resolved{
				ResolvedParticipant: ResolvedParticipant{
					Name:        p.Name,
					CityName:    city.Name,
					Coordinates: city.Coordinates,
				},
				index: i,
			})

		case dataset.InlineCity:
			coords := dataset.Placeholder
			if ref.Coordinates != nil {
				coords = *ref.Coordinates
			}
			out = append(out, resolved{
				ResolvedParticipant: ResolvedParticipant{
					Name:        p.Name,
					CityName:    ref.Name,
					Coordinates: coords,
				},
				index: i,
			})
		}
	}

	return out, skipped
}

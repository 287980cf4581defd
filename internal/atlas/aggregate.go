package atlas

import (
	"sort"

	"github.com/i474232898/participant-map/internal/dataset"
)

// Aggregate resolves participants against cities and builds the city table and
// the heatmap point set. cities may be nil for datasets with inline cities.
//
// Counts are keyed on the city name exactly as stored. The table is sorted by
// count descending; on equal counts the city that reached its final count
// earlier in the input comes first.
func Aggregate(participants []dataset.Participant, cities []dataset.City) Aggregation {
	rs, skipped := resolveAll(participants, cities)

	agg := Aggregation{
		Counts:   groupByCity(rs),
		Features: NewFeatureCollection(),
		Skipped:  skipped,
	}

	for _, r := range rs {
		agg.Features.Features = append(agg.Features.Features, newPointFeature(r.ResolvedParticipant))
	}

	return agg
}

func groupByCity(rs []resolved) []CityStat {
	stats := make(map[string]*CityStat)
	order := make([]string, 0)

	for _, r := range rs {
		// a position without a city name still renders, but cannot be counted
		if r.CityName == "" {
			continue
		}

		st, ok := stats[r.CityName]
		if !ok {
			st = &CityStat{
				City:        r.CityName,
				Coordinates: r.Coordinates,
				Names:       []string{},
			}
			stats[r.CityName] = st
			order = append(order, r.CityName)
		}
		st.Count++
		st.Names = append(st.Names, r.Name)
		st.lastSeen = r.index
	}

	out := make([]CityStat, 0, len(order))
	for _, name := range order {
		out = append(out, *stats[name])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].lastSeen < out[j].lastSeen
	})

	return out
}

func newPointFeature(r ResolvedParticipant) Feature {
	props := map[string]string{"name": r.Name}
	if r.CityName != "" {
		props["city"] = r.CityName
	}

	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: r.Coordinates,
		},
		Properties: props,
	}
}

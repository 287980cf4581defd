// Package spatial indexes aggregated cities for map-area and nearest-city queries.
package spatial

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/golang/geo/s2"

	"github.com/i474232898/participant-map/internal/atlas"
	"github.com/i474232898/participant-map/internal/dataset"
)

const (
	tolerance   = 1e-6
	minChildren = 4
	maxChildren = 16
	dimensions  = 2

	earthRadiusKm = 6371.0
)

// cityItem wraps a CityStat for R-Tree indexing
type cityItem struct {
	stat atlas.CityStat
	rect rtreego.Rect
}

func (ci *cityItem) Bounds() rtreego.Rect {
	return ci.rect
}

// Index is an immutable R-Tree over the cities of one snapshot.
// Cities still at the placeholder position are not indexed.
type Index struct {
	tree *rtreego.Rtree
	size int
}

// NewIndex bulk-loads the given city stats.
func NewIndex(stats []atlas.CityStat) *Index {
	items := make([]rtreego.Spatial, 0, len(stats))
	for _, st := range stats {
		if st.Coordinates.IsPlaceholder() {
			continue
		}
		p := rtreego.Point{st.Coordinates.Lng(), st.Coordinates.Lat()}
		items = append(items, &cityItem{stat: st, rect: p.ToRect(tolerance)})
	}

	return &Index{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren, items...),
		size: len(items),
	}
}

// Size returns the number of indexed cities.
func (idx *Index) Size() int {
	return idx.size
}

// Nearest returns up to k cities closest to c, nearest first.
func (idx *Index) Nearest(c dataset.Coordinates, k int) []atlas.CityStat {
	if k <= 0 || idx.size == 0 {
		return []atlas.CityStat{}
	}

	results := idx.tree.NearestNeighbors(k, rtreego.Point{c.Lng(), c.Lat()})
	out := make([]atlas.CityStat, 0, len(results))
	for _, r := range results {
		if item, ok := r.(*cityItem); ok {
			out = append(out, item.stat)
		}
	}
	return out
}

// Within returns the cities inside b, edges included.
func (idx *Index) Within(b atlas.Bounds) ([]atlas.CityStat, error) {
	rect, err := rtreego.NewRectFromPoints(
		rtreego.Point{b.SouthWest.Lng() - tolerance, b.SouthWest.Lat() - tolerance},
		rtreego.Point{b.NorthEast.Lng() + tolerance, b.NorthEast.Lat() + tolerance},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	results := idx.tree.SearchIntersect(rect)
	out := make([]atlas.CityStat, 0, len(results))
	for _, r := range results {
		item, ok := r.(*cityItem)
		if !ok || !b.Contains(item.stat.Coordinates) {
			continue
		}
		out = append(out, item.stat)
	}
	return out, nil
}

// DistanceKm is the great-circle distance between two positions.
func DistanceKm(a, b dataset.Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat(), a.Lng())
	p2 := s2.LatLngFromDegrees(b.Lat(), b.Lng())
	return p1.Distance(p2).Radians() * earthRadiusKm
}

// Extent returns the bounding box of the non-placeholder positions, grown by
// padDegrees on every side and clamped to valid coordinates. ok is false when
// there is no real position at all.
func Extent(points []dataset.Coordinates, padDegrees float64) (atlas.Bounds, bool) {
	rect := s2.EmptyRect()
	for _, p := range points {
		if p.IsPlaceholder() {
			continue
		}
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat(), p.Lng()))
	}
	if rect.IsEmpty() {
		return atlas.Bounds{}, false
	}

	lo, hi := rect.Lo(), rect.Hi()
	minLng, maxLng := lo.Lng.Degrees(), hi.Lng.Degrees()
	if rect.Lng.IsInverted() {
		// spans the antimeridian; the renderer's bounds cannot express that
		minLng, maxLng = -180, 180
	}

	return atlas.Bounds{
		SouthWest: dataset.Coordinates{clamp(minLng-padDegrees, 180), clamp(lo.Lat.Degrees()-padDegrees, 90)},
		NorthEast: dataset.Coordinates{clamp(maxLng+padDegrees, 180), clamp(hi.Lat.Degrees()+padDegrees, 90)},
	}, true
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

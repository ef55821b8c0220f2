package service

import (
	"github.com/platewatch/backend/internal/domain"
	"github.com/platewatch/backend/pkg/utils"
)

// DefaultViewportPadding expands the fitted bounding box by a fixed
// margin in degrees so edge markers are not clipped.
const DefaultViewportPadding = 0.005

// PathService renders an ordered coordinate sequence into a map overlay:
// a connected line, start/end/waypoint markers, and a fitted viewport.
type PathService struct {
	padding float64
}

// NewPathService creates a path service with the default viewport padding.
func NewPathService() *PathService {
	return &PathService{padding: DefaultViewportPadding}
}

// BuildPath derives the full overlay for a coordinate list. Input order
// is preserved exactly: no reordering, no deduplication. An empty list
// yields nil and the caller falls back to an empty map at the default
// center. Each call returns a fresh PathView, so a new search replaces
// the previous overlay wholesale.
func (s *PathService) BuildPath(coords []domain.LatLng) *domain.PathView {
	if len(coords) == 0 {
		return nil
	}

	line := make([]domain.LatLng, len(coords))
	copy(line, coords)

	markers := make([]domain.Marker, 0, len(line))
	markers = append(markers, domain.Marker{Kind: domain.MarkerStart, Position: line[0]})
	for i := 1; i < len(line)-1; i++ {
		markers = append(markers, domain.Marker{Kind: domain.MarkerWaypoint, Position: line[i]})
	}
	if len(line) > 1 {
		markers = append(markers, domain.Marker{Kind: domain.MarkerEnd, Position: line[len(line)-1]})
	}

	var distance float64
	for i := 1; i < len(line); i++ {
		distance += utils.Haversine(line[i-1].Lat, line[i-1].Lng, line[i].Lat, line[i].Lng)
	}

	return &domain.PathView{
		Line:       line,
		Markers:    markers,
		Viewport:   s.fitViewport(line),
		DistanceKm: utils.RoundTo(distance, 3),
	}
}

// fitViewport computes a padded bounding box over every coordinate.
func (s *PathService) fitViewport(line []domain.LatLng) domain.Viewport {
	minLat, maxLat := line[0].Lat, line[0].Lat
	minLng, maxLng := line[0].Lng, line[0].Lng

	for _, p := range line[1:] {
		if p.Lat < minLat {
			minLat = p.Lat
		}
		if p.Lat > maxLat {
			maxLat = p.Lat
		}
		if p.Lng < minLng {
			minLng = p.Lng
		}
		if p.Lng > maxLng {
			maxLng = p.Lng
		}
	}

	sw := domain.LatLng{Lat: minLat - s.padding, Lng: minLng - s.padding}
	ne := domain.LatLng{Lat: maxLat + s.padding, Lng: maxLng + s.padding}

	return domain.Viewport{
		SouthWest: sw,
		NorthEast: ne,
		Center: domain.LatLng{
			Lat: (sw.Lat + ne.Lat) / 2,
			Lng: (sw.Lng + ne.Lng) / 2,
		},
	}
}

package domain

import (
	"encoding/json"
	"fmt"
)

// LatLng is the canonical coordinate representation: latitude first,
// longitude second. Everything downstream of the adapters uses this
// order; GeoJSON's [lng, lat] convention is converted at the boundary
// and never leaks inward.
type LatLng struct {
	Lat float64
	Lng float64
}

// MarshalJSON encodes the coordinate as a [lat, lng] pair.
func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lat, p.Lng})
}

// UnmarshalJSON decodes a [lat, lng] pair.
func (p *LatLng) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("geo: invalid coordinate: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("geo: coordinate needs 2 elements, got %d", len(pair))
	}
	p.Lat, p.Lng = pair[0], pair[1]
	return nil
}

// MarkerKind classifies path markers for the map overlay.
type MarkerKind string

const (
	MarkerStart    MarkerKind = "start"
	MarkerEnd      MarkerKind = "end"
	MarkerWaypoint MarkerKind = "waypoint"
)

// Marker is a single map marker on a rendered path.
type Marker struct {
	Kind     MarkerKind `json:"kind"`
	Position LatLng     `json:"position"`
}

// Viewport is a bounding box that encloses a whole path, padded so
// markers are not clipped at the edge.
type Viewport struct {
	SouthWest LatLng `json:"south_west"`
	NorthEast LatLng `json:"north_east"`
	Center    LatLng `json:"center"`
}

// PathView is the fully derived map overlay for one plate: the line in
// input order, the marker set, and the fitted viewport.
type PathView struct {
	Line       []LatLng `json:"line"`
	Markers    []Marker `json:"markers"`
	Viewport   Viewport `json:"viewport"`
	DistanceKm float64  `json:"distance_km"`
}

// LineStringGeometry is the GeoJSON-style shape some upstream endpoints
// use for paths. GeoJSON orders axes [lng, lat].
type LineStringGeometry struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// ToGeoJSON converts a canonical line into GeoJSON axis order.
func ToGeoJSON(line []LatLng) LineStringGeometry {
	coords := make([][2]float64, len(line))
	for i, p := range line {
		coords[i] = [2]float64{p.Lng, p.Lat}
	}
	return LineStringGeometry{Type: "LineString", Coordinates: coords}
}

// FromGeoJSON converts a GeoJSON line into canonical [lat, lng] order.
func FromGeoJSON(geom LineStringGeometry) []LatLng {
	line := make([]LatLng, len(geom.Coordinates))
	for i, c := range geom.Coordinates {
		line[i] = LatLng{Lat: c[1], Lng: c[0]}
	}
	return line
}

package service

import (
	"testing"

	"github.com/platewatch/backend/internal/domain"
)

func TestBuildPathEmpty(t *testing.T) {
	svc := NewPathService()
	if view := svc.BuildPath(nil); view != nil {
		t.Errorf("BuildPath(nil) = %+v, want nil", view)
	}
	if view := svc.BuildPath([]domain.LatLng{}); view != nil {
		t.Errorf("BuildPath(empty) = %+v, want nil", view)
	}
}

func TestBuildPathSinglePoint(t *testing.T) {
	svc := NewPathService()
	p := domain.LatLng{Lat: 43.2389, Lng: 76.8897}

	view := svc.BuildPath([]domain.LatLng{p})
	if view == nil {
		t.Fatal("BuildPath() returned nil for single point")
	}
	if len(view.Markers) != 1 {
		t.Fatalf("markers = %d, want 1", len(view.Markers))
	}
	if view.Markers[0].Kind != domain.MarkerStart {
		t.Errorf("marker kind = %q, want %q", view.Markers[0].Kind, domain.MarkerStart)
	}
	if view.Markers[0].Position != p {
		t.Errorf("marker position = %+v, want %+v", view.Markers[0].Position, p)
	}
	if view.DistanceKm != 0 {
		t.Errorf("DistanceKm = %v, want 0", view.DistanceKm)
	}
}

func TestBuildPathTwoPoints(t *testing.T) {
	svc := NewPathService()
	coords := []domain.LatLng{
		{Lat: 43.2389, Lng: 76.8897},
		{Lat: 43.2567, Lng: 76.9286},
	}

	view := svc.BuildPath(coords)
	if view == nil {
		t.Fatal("BuildPath() returned nil")
	}
	if len(view.Markers) != 2 {
		t.Fatalf("markers = %d, want 2 (no waypoints for length 2)", len(view.Markers))
	}
	if view.Markers[0].Kind != domain.MarkerStart || view.Markers[1].Kind != domain.MarkerEnd {
		t.Errorf("marker kinds = %q,%q, want start,end", view.Markers[0].Kind, view.Markers[1].Kind)
	}
	if view.DistanceKm <= 0 {
		t.Errorf("DistanceKm = %v, want > 0", view.DistanceKm)
	}
}

func TestBuildPathMarkers(t *testing.T) {
	svc := NewPathService()
	coords := []domain.LatLng{
		{Lat: 43.2220, Lng: 76.8510},
		{Lat: 43.2389, Lng: 76.8897},
		{Lat: 43.2480, Lng: 76.9090},
		{Lat: 43.2567, Lng: 76.9286},
	}

	view := svc.BuildPath(coords)
	if view == nil {
		t.Fatal("BuildPath() returned nil")
	}

	// Line passes through all four in input order
	if len(view.Line) != 4 {
		t.Fatalf("line length = %d, want 4", len(view.Line))
	}
	for i, p := range coords {
		if view.Line[i] != p {
			t.Errorf("line[%d] = %+v, want %+v (input order must be preserved)", i, view.Line[i], p)
		}
	}

	if len(view.Markers) != 4 {
		t.Fatalf("markers = %d, want 4", len(view.Markers))
	}
	if view.Markers[0].Kind != domain.MarkerStart || view.Markers[0].Position != coords[0] {
		t.Errorf("start marker = %+v, want start at %+v", view.Markers[0], coords[0])
	}
	last := view.Markers[len(view.Markers)-1]
	if last.Kind != domain.MarkerEnd || last.Position != coords[3] {
		t.Errorf("end marker = %+v, want end at %+v", last, coords[3])
	}
	for i := 1; i < 3; i++ {
		if view.Markers[i].Kind != domain.MarkerWaypoint {
			t.Errorf("marker[%d].Kind = %q, want waypoint", i, view.Markers[i].Kind)
		}
		if view.Markers[i].Position != coords[i] {
			t.Errorf("marker[%d].Position = %+v, want %+v", i, view.Markers[i].Position, coords[i])
		}
	}
}

func TestBuildPathPreservesDuplicatesAndOrder(t *testing.T) {
	svc := NewPathService()
	coords := []domain.LatLng{
		{Lat: 43.25, Lng: 76.90},
		{Lat: 43.25, Lng: 76.90}, // duplicate must survive
		{Lat: 43.24, Lng: 76.88}, // not re-sorted
	}

	view := svc.BuildPath(coords)
	if len(view.Line) != 3 {
		t.Fatalf("line length = %d, want 3 (no deduplication)", len(view.Line))
	}
	if view.Line[2] != coords[2] {
		t.Errorf("line[2] = %+v, want %+v", view.Line[2], coords[2])
	}
}

func TestBuildPathViewportContainsAllPoints(t *testing.T) {
	svc := NewPathService()
	coords := []domain.LatLng{
		{Lat: 43.2220, Lng: 76.9286},
		{Lat: 43.2567, Lng: 76.8510},
		{Lat: 43.2400, Lng: 76.9000},
	}

	view := svc.BuildPath(coords)
	vp := view.Viewport
	for i, p := range coords {
		if p.Lat < vp.SouthWest.Lat || p.Lat > vp.NorthEast.Lat ||
			p.Lng < vp.SouthWest.Lng || p.Lng > vp.NorthEast.Lng {
			t.Errorf("coords[%d] = %+v outside viewport %+v", i, p, vp)
		}
	}

	// Padding must keep extreme points strictly inside the box
	if vp.SouthWest.Lat >= 43.2220 {
		t.Errorf("SouthWest.Lat = %v, want < 43.2220 (padding)", vp.SouthWest.Lat)
	}
	if vp.NorthEast.Lng <= 76.9286 {
		t.Errorf("NorthEast.Lng = %v, want > 76.9286 (padding)", vp.NorthEast.Lng)
	}

	wantCenterLat := (vp.SouthWest.Lat + vp.NorthEast.Lat) / 2
	if vp.Center.Lat != wantCenterLat {
		t.Errorf("Center.Lat = %v, want %v", vp.Center.Lat, wantCenterLat)
	}
}

func TestBuildPathReplacesPriorView(t *testing.T) {
	svc := NewPathService()

	first := svc.BuildPath([]domain.LatLng{
		{Lat: 43.22, Lng: 76.85},
		{Lat: 43.23, Lng: 76.86},
		{Lat: 43.24, Lng: 76.87},
	})
	second := svc.BuildPath([]domain.LatLng{
		{Lat: 51.13, Lng: 71.43},
	})

	// The new view must not carry anything over from the old plate
	if len(second.Markers) != 1 {
		t.Fatalf("second view markers = %d, want 1 (no stale markers)", len(second.Markers))
	}
	if len(first.Markers) != 3 {
		t.Errorf("first view mutated: markers = %d, want 3", len(first.Markers))
	}
}

func TestBuildPathInputIsolation(t *testing.T) {
	svc := NewPathService()
	coords := []domain.LatLng{
		{Lat: 43.22, Lng: 76.85},
		{Lat: 43.23, Lng: 76.86},
	}

	view := svc.BuildPath(coords)
	coords[0] = domain.LatLng{Lat: 0, Lng: 0}

	if view.Line[0].Lat != 43.22 {
		t.Errorf("view shares backing array with caller input")
	}
}

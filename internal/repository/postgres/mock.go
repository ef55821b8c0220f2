package postgres

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/platewatch/backend/internal/domain"
)

// MockRepository implements domain.SightingRepository for testing/demo mode.
// It is seeded with a small set of plates so the dashboard works without
// a database.
type MockRepository struct {
	mu        sync.RWMutex
	sightings map[string][]domain.Sighting // keyed by plate hash
}

// NewMockRepository creates a mock repository with demo data
func NewMockRepository() *MockRepository {
	r := &MockRepository{
		sightings: make(map[string][]domain.Sighting),
	}
	r.seed()
	return r
}

// seed loads the demo plates. ABC123 is the canonical three-camera
// scenario; A777BC carries a longer path for map rendering. Sightings
// are stored deliberately out of chronological order because the real
// store gives no ordering guarantee.
func (r *MockRepository) seed() {
	now := time.Now().UTC()
	vehicle := uuid.NewString()

	abc := []domain.Sighting{
		{
			Timestamp:  now.Add(-30 * time.Minute).Format(time.RFC3339),
			CameraID:   "CAM_003",
			Lat:        43.2567, Lng: 76.9286,
			Confidence: 0.92,
			ImageURL:   "/media/demo/abc123_3.jpg",
			VehicleID:  vehicle,
		},
		{
			Timestamp:  now.Add(-90 * time.Minute).Format(time.RFC3339),
			CameraID:   "CAM_001",
			Lat:        43.2389, Lng: 76.8897,
			Confidence: 0.95,
			ImageURL:   "/media/demo/abc123_1.jpg",
			VehicleID:  vehicle,
		},
		{
			Timestamp:  now.Add(-60 * time.Minute).Format(time.RFC3339),
			CameraID:   "CAM_002",
			Lat:        43.2480, Lng: 76.9090,
			Confidence: 0.88,
			ImageURL:   "/media/demo/abc123_2.jpg",
			VehicleID:  vehicle,
		},
	}
	r.sightings[HashPlate("ABC123")] = abc

	vehicle2 := uuid.NewString()
	speed := 48.5
	route := []struct {
		lat, lng float64
		cam      string
		minAgo   int
		conf     float64
	}{
		{43.2220, 76.8510, "CAM_010", 240, 0.91},
		{43.2310, 76.8705, "CAM_011", 225, 0.89},
		{43.2389, 76.8897, "CAM_001", 210, 0.94},
		{43.2480, 76.9090, "CAM_002", 195, 0.90},
		{43.2567, 76.9286, "CAM_003", 180, 0.93},
	}
	var a777 []domain.Sighting
	for i, p := range route {
		s := domain.Sighting{
			Timestamp:  now.Add(-time.Duration(p.minAgo) * time.Minute).Format(time.RFC3339),
			CameraID:   p.cam,
			Lat:        p.lat,
			Lng:        p.lng,
			Confidence: p.conf,
			Direction:  "NE",
			ImageURL:   "/media/demo/a777bc.jpg",
			VehicleID:  vehicle2,
		}
		if i > 0 {
			s.Speed = &speed
		}
		a777 = append(a777, s)
	}
	r.sightings[HashPlate("A777BC")] = a777
}

// SearchSightings returns matching demo sightings in stored (unsorted) order
func (r *MockRepository) SearchSightings(ctx context.Context, plate string, from, to time.Time) ([]domain.Sighting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Sighting
	for _, s := range r.sightings[HashPlate(plate)] {
		ts, err := s.ParsedTime()
		if err != nil {
			continue
		}
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// GetPath returns the plate's coordinates in chronological order
func (r *MockRepository) GetPath(ctx context.Context, plate string) ([]domain.LatLng, error) {
	r.mu.RLock()
	stored := r.sightings[HashPlate(plate)]
	ordered := make([]domain.Sighting, len(stored))
	copy(ordered, stored)
	r.mu.RUnlock()

	sort.SliceStable(ordered, func(i, j int) bool {
		ti, erri := ordered[i].ParsedTime()
		tj, errj := ordered[j].ParsedTime()
		if erri != nil || errj != nil {
			return false
		}
		return ti.Before(tj)
	})

	coords := make([]domain.LatLng, 0, len(ordered))
	for _, s := range ordered {
		coords = append(coords, domain.LatLng{Lat: s.Lat, Lng: s.Lng})
	}
	return coords, nil
}

// SaveSighting appends a detection event to the in-memory store
func (r *MockRepository) SaveSighting(ctx context.Context, plate string, s domain.Sighting) error {
	if _, err := s.ParsedTime(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := HashPlate(plate)
	r.sightings[key] = append(r.sightings[key], s)
	return nil
}

// PurgeOlderThan drops demo sightings past the retention cutoff
func (r *MockRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for key, list := range r.sightings {
		kept := list[:0]
		for _, s := range list {
			ts, err := s.ParsedTime()
			if err == nil && ts.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, s)
		}
		r.sightings[key] = kept
	}
	return removed, nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

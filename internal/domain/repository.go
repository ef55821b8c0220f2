package domain

import (
	"context"
	"time"
)

// DefaultCenter is where the map points when there is no path to fit.
const (
	DefaultCenterLat = 43.2389
	DefaultCenterLng = 76.8897
)

// SightingRepository defines the interface for sighting storage.
// This follows the Dependency Inversion Principle - domain defines the interface
type SightingRepository interface {
	// SearchSightings returns sightings for a plate, optionally bounded
	// by [from, to]. Zero bounds are open. Result order is NOT guaranteed.
	SearchSightings(ctx context.Context, plate string, from, to time.Time) ([]Sighting, error)

	// GetPath returns the plate's coordinates in chronological order
	GetPath(ctx context.Context, plate string) ([]LatLng, error)

	// SaveSighting persists one detection event
	SaveSighting(ctx context.Context, plate string, s Sighting) error

	// PurgeOlderThan deletes sightings older than cutoff, returning the
	// number of removed records (retention policy)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Health checks store connectivity
	Health(ctx context.Context) error
}

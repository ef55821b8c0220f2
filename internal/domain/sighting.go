package domain

import "time"

// Sighting represents one detection event of a plate by a camera.
// Timestamp stays in wire form (RFC 3339) because the upstream store
// does not guarantee well-formed values; parsing happens in the
// aggregation layer under an explicit malformed-record policy.
type Sighting struct {
	Timestamp  string   `json:"timestamp"`
	CameraID   string   `json:"camera_id"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Confidence float64  `json:"confidence"`
	Speed      *float64 `json:"speed,omitempty"`
	Direction  string   `json:"direction,omitempty"`
	ImageURL   string   `json:"image_url"`
	VehicleID  string   `json:"vehicle_id"`
}

// ParsedTime returns the sighting timestamp as a time.Time.
func (s Sighting) ParsedTime() (time.Time, error) {
	return time.Parse(time.RFC3339, s.Timestamp)
}

// TimeRange holds the chronological extremes of a sighting set.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Stats summarizes a sighting result set. Recomputed wholesale for
// every new search; never persisted.
type Stats struct {
	TotalSightings   int       `json:"total_sightings"`
	UniqueCameras    int       `json:"unique_cameras"`
	AvgConfidence    float64   `json:"avg_confidence"`
	AvgConfidencePct float64   `json:"avg_confidence_pct"`
	TimeRange        TimeRange `json:"time_range"`
}

// PlateSummary aggregates everything the dashboard shows for one plate.
type PlateSummary struct {
	Plate     string     `json:"plate"`
	Sightings []Sighting `json:"sightings"`
	Stats     *Stats     `json:"stats"`
	Path      *PathView  `json:"path"`
	Timestamp time.Time  `json:"timestamp"`
}

// SightingsResponse wraps a sightings list with metadata.
type SightingsResponse struct {
	Data    []Sighting `json:"data"`
	Count   int        `json:"count"`
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
}

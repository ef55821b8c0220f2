package service

import (
	"fmt"
	"time"

	"github.com/platewatch/backend/internal/domain"
	"github.com/platewatch/backend/pkg/utils"
)

// MalformedPolicy controls what happens when a sighting carries an
// unparseable timestamp. The upstream store's behavior is undefined, so
// the choice is explicit configuration rather than a silent default.
type MalformedPolicy int

const (
	// PolicyDrop removes malformed records from the aggregation and
	// continues with the rest.
	PolicyDrop MalformedPolicy = iota
	// PolicyFail rejects the whole aggregation on the first malformed record.
	PolicyFail
)

// StatsService derives summary statistics from a sighting result set.
// It is stateless: the same input always produces the same output.
type StatsService struct {
	policy MalformedPolicy
}

// NewStatsService creates a new stats service with the given
// malformed-record policy.
func NewStatsService(policy MalformedPolicy) *StatsService {
	return &StatsService{policy: policy}
}

// Aggregate computes summary statistics over a sighting list. An empty
// input (or one left empty after dropping malformed records) yields
// (nil, nil): callers render a "no results" state, never a zero-filled
// stats block.
//
// TimeRange scans every record; the store does not guarantee
// chronological order, so first/last elements are never trusted.
func (s *StatsService) Aggregate(sightings []domain.Sighting) (*domain.Stats, error) {
	if len(sightings) == 0 {
		return nil, nil
	}

	var (
		kept     int
		confSum  float64
		cameras  = make(map[string]struct{})
		earliest time.Time
		latest   time.Time
	)

	for _, sg := range sightings {
		ts, err := sg.ParsedTime()
		if err != nil {
			if s.policy == PolicyFail {
				return nil, fmt.Errorf("stats: malformed timestamp %q: %w", sg.Timestamp, err)
			}
			continue
		}

		if kept == 0 || ts.Before(earliest) {
			earliest = ts
		}
		if kept == 0 || ts.After(latest) {
			latest = ts
		}

		cameras[sg.CameraID] = struct{}{}
		confSum += sg.Confidence
		kept++
	}

	if kept == 0 {
		return nil, nil
	}

	avg := utils.Clamp(confSum/float64(kept), 0, 1)

	return &domain.Stats{
		TotalSightings:   kept,
		UniqueCameras:    len(cameras),
		AvgConfidence:    avg,
		AvgConfidencePct: utils.RoundTo(avg*100, 1),
		TimeRange: domain.TimeRange{
			Start: earliest,
			End:   latest,
		},
	}, nil
}

// FilterByRange keeps sightings whose timestamp falls within [from, to].
// Zero bounds are open. Malformed records follow the configured policy.
func (s *StatsService) FilterByRange(sightings []domain.Sighting, from, to time.Time) ([]domain.Sighting, error) {
	if len(sightings) == 0 {
		return nil, nil
	}

	out := make([]domain.Sighting, 0, len(sightings))
	for _, sg := range sightings {
		ts, err := sg.ParsedTime()
		if err != nil {
			if s.policy == PolicyFail {
				return nil, fmt.Errorf("stats: malformed timestamp %q: %w", sg.Timestamp, err)
			}
			continue
		}
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}
		out = append(out, sg)
	}

	return out, nil
}

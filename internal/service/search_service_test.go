package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/platewatch/backend/internal/domain"
)

// fakeRepo is a controllable SightingRepository for coordinator tests.
// A plate listed in started/blocked gets its sightings fetch held until
// the test releases it, which makes the supersession race deterministic.
type fakeRepo struct {
	data    map[string][]domain.Sighting
	paths   map[string][]domain.LatLng
	started map[string]chan struct{}
	blocked map[string]chan struct{}
	pathErr error
}

func (f *fakeRepo) SearchSightings(ctx context.Context, plate string, from, to time.Time) ([]domain.Sighting, error) {
	if ch, ok := f.started[plate]; ok {
		close(ch)
	}
	if ch, ok := f.blocked[plate]; ok {
		<-ch
	}
	return f.data[plate], nil
}

func (f *fakeRepo) GetPath(ctx context.Context, plate string) ([]domain.LatLng, error) {
	if f.pathErr != nil {
		return nil, f.pathErr
	}
	return f.paths[plate], nil
}

func (f *fakeRepo) SaveSighting(ctx context.Context, plate string, s domain.Sighting) error {
	return nil
}

func (f *fakeRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) Health(ctx context.Context) error { return nil }

func newTestSearch(repo domain.SightingRepository) *SearchService {
	return NewSearchService(repo, NewStatsService(PolicyDrop), NewPathService(), zerolog.Nop())
}

func TestSearchAssemblesSummary(t *testing.T) {
	repo := &fakeRepo{
		data: map[string][]domain.Sighting{
			"ABC123": {
				sightingAt("2025-03-14T08:00:00Z", "CAM_001", 0.95),
				sightingAt("2025-03-14T08:20:00Z", "CAM_002", 0.88),
				sightingAt("2025-03-14T08:40:00Z", "CAM_003", 0.92),
			},
		},
		paths: map[string][]domain.LatLng{
			"ABC123": {
				{Lat: 43.2389, Lng: 76.8897},
				{Lat: 43.2480, Lng: 76.9090},
				{Lat: 43.2567, Lng: 76.9286},
			},
		},
	}
	svc := newTestSearch(repo)

	summary, err := svc.Search(context.Background(), "ABC123", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if summary.Plate != "ABC123" {
		t.Errorf("Plate = %q, want ABC123", summary.Plate)
	}
	if len(summary.Sightings) != 3 {
		t.Errorf("Sightings = %d, want 3", len(summary.Sightings))
	}
	if summary.Stats == nil || summary.Stats.UniqueCameras != 3 {
		t.Errorf("Stats = %+v, want 3 unique cameras", summary.Stats)
	}
	if summary.Path == nil || len(summary.Path.Markers) != 3 {
		t.Errorf("Path = %+v, want 3 markers", summary.Path)
	}
	if got := svc.Current(); got != summary {
		t.Errorf("Current() = %p, want the just-committed summary %p", got, summary)
	}
}

func TestSearchEmptyResult(t *testing.T) {
	svc := newTestSearch(&fakeRepo{})

	summary, err := svc.Search(context.Background(), "NOPE42", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if summary.Stats != nil {
		t.Errorf("Stats = %+v, want nil for empty result", summary.Stats)
	}
	if summary.Path != nil {
		t.Errorf("Path = %+v, want nil for empty result", summary.Path)
	}
}

func TestSearchPathFailureIsNonFatal(t *testing.T) {
	repo := &fakeRepo{
		data: map[string][]domain.Sighting{
			"ABC123": {sightingAt("2025-03-14T08:00:00Z", "CAM_001", 0.95)},
		},
		pathErr: errors.New("upstream path endpoint down"),
	}
	svc := newTestSearch(repo)

	summary, err := svc.Search(context.Background(), "ABC123", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Search() error = %v, path failure must not fail the search", err)
	}
	if summary.Stats == nil {
		t.Error("Stats = nil, want stats despite the missing path")
	}
	if summary.Path != nil {
		t.Errorf("Path = %+v, want nil when path fetch failed", summary.Path)
	}
}

func TestSearchSupersededResultIsDiscarded(t *testing.T) {
	// A slow first search must not overwrite the view of a fast second
	// one that was initiated after it.
	oldStarted := make(chan struct{})
	oldRelease := make(chan struct{})
	repo := &fakeRepo{
		data: map[string][]domain.Sighting{
			"OLD111": {sightingAt("2025-03-14T08:00:00Z", "CAM_001", 0.9)},
			"NEW222": {sightingAt("2025-03-14T09:00:00Z", "CAM_002", 0.8)},
		},
		started: map[string]chan struct{}{"OLD111": oldStarted},
		blocked: map[string]chan struct{}{"OLD111": oldRelease},
	}
	svc := newTestSearch(repo)

	oldDone := make(chan struct{})
	go func() {
		defer close(oldDone)
		if _, err := svc.Search(context.Background(), "OLD111", time.Time{}, time.Time{}); err != nil {
			t.Errorf("Search(OLD111) error = %v", err)
		}
	}()

	// Wait until the slow search is in flight, then supersede it.
	<-oldStarted
	if _, err := svc.Search(context.Background(), "NEW222", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("Search(NEW222) error = %v", err)
	}

	// Let the slow response come back late.
	close(oldRelease)
	<-oldDone

	current := svc.Current()
	if current == nil {
		t.Fatal("Current() = nil after both searches completed")
	}
	if current.Plate != "NEW222" {
		t.Errorf("Current().Plate = %q, want NEW222 (late OLD111 result must be discarded)", current.Plate)
	}
}

func TestSearchLatestOfSequentialSearchesWins(t *testing.T) {
	repo := &fakeRepo{
		data: map[string][]domain.Sighting{
			"AAA": {sightingAt("2025-03-14T08:00:00Z", "CAM_001", 0.9)},
			"BBB": {sightingAt("2025-03-14T09:00:00Z", "CAM_002", 0.8)},
		},
	}
	svc := newTestSearch(repo)

	ctx := context.Background()
	if _, err := svc.Search(ctx, "AAA", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("Search(AAA) error = %v", err)
	}
	if _, err := svc.Search(ctx, "BBB", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("Search(BBB) error = %v", err)
	}

	if got := svc.Current().Plate; got != "BBB" {
		t.Errorf("Current().Plate = %q, want BBB", got)
	}
}

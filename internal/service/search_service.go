package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/platewatch/backend/internal/domain"
)

// SearchService coordinates one plate search: the sightings fetch and
// the path fetch are logically independent, run concurrently, and may
// complete in either order. The assembled summary replaces the current
// dashboard view wholesale.
//
// A generation counter guards against stale results: when a new search
// supersedes an in-flight one, the late result is discarded instead of
// overwriting the newer view.
type SearchService struct {
	repo  domain.SightingRepository
	stats *StatsService
	paths *PathService
	log   zerolog.Logger

	mu      sync.Mutex
	gen     uint64
	current *domain.PlateSummary
}

// NewSearchService creates a new search coordinator.
func NewSearchService(repo domain.SightingRepository, stats *StatsService, paths *PathService, log zerolog.Logger) *SearchService {
	return &SearchService{
		repo:  repo,
		stats: stats,
		paths: paths,
		log:   log,
	}
}

// Search fetches sightings and path for a plate concurrently and
// derives the stats and path views. The sightings fetch is load-bearing
// and its failure fails the search; a path fetch failure only costs the
// map overlay and is logged.
func (s *SearchService) Search(ctx context.Context, plate string, from, to time.Time) (*domain.PlateSummary, error) {
	gen := s.beginSearch()

	var (
		wg        sync.WaitGroup
		sightings []domain.Sighting
		coords    []domain.LatLng
		sgErr     error
		pathErr   error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sightings, sgErr = s.repo.SearchSightings(ctx, plate, from, to)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		coords, pathErr = s.repo.GetPath(ctx, plate)
	}()

	wg.Wait()

	if sgErr != nil {
		return nil, sgErr
	}
	if pathErr != nil {
		s.log.Warn().Err(pathErr).Str("plate", plate).Msg("path fetch failed, rendering without overlay")
		coords = nil
	}

	stats, err := s.stats.Aggregate(sightings)
	if err != nil {
		return nil, err
	}

	summary := &domain.PlateSummary{
		Plate:     plate,
		Sightings: sightings,
		Stats:     stats,
		Path:      s.paths.BuildPath(coords),
		Timestamp: time.Now(),
	}

	s.commit(gen, summary)
	return summary, nil
}

// Current returns the view of the most recently initiated search that
// has completed without being superseded. Nil before the first search.
func (s *SearchService) Current() *domain.PlateSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// beginSearch bumps the generation; the returned value identifies the
// search that was most recently initiated.
func (s *SearchService) beginSearch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// commit installs the summary as the current view unless a newer search
// has been initiated since; a stale result is dropped silently.
func (s *SearchService) commit(gen uint64, summary *domain.PlateSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug().Str("plate", summary.Plate).Msg("discarding superseded search result")
		return
	}
	s.current = summary
}

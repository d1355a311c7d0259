package videoindex

import (
	"sync/atomic"

	"github.com/skyflixer/skyflixer/internal/hosting"
	"github.com/skyflixer/skyflixer/internal/hosting/parser"
)

// Tuning constants for the lookup tiers. These are the load-bearing knobs
// of the matching engine and the first thing to revisit with real mismatch
// data from a deployment.
const (
	movieFuzzyThreshold   = 0.70
	episodeFuzzyThreshold = 0.60
	yearTolerance         = 1
)

// Store holds the current index snapshot behind an atomic pointer.
// Single writer (the builder), arbitrarily many concurrent readers; a
// reader always observes either the fully-old or fully-new generation.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding an empty, unbuilt snapshot.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(emptySnapshot())
	return s
}

// Snapshot returns the current index generation.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Stats returns the current build statistics.
func (s *Store) Stats() Stats {
	return s.current.Load().Stats
}

// swap publishes a new generation. Builder-only.
func (s *Store) swap(snap *Snapshot) {
	s.current.Store(snap)
}

// LookupMovie resolves a movie request against the index with tiered
// matching, short-circuiting at the first non-empty tier:
// exact (title:year), year ±1, year-agnostic, then a fuzzy scan over keys
// within the same year window. Returns an empty slice on a total miss.
func (s *Store) LookupMovie(title string, year int) []hosting.VideoEntry {
	snap := s.current.Load()
	norm := parser.NormalizeTitle(title)
	if norm == "" {
		return []hosting.VideoEntry{}
	}

	if entries, ok := snap.Movies[MovieKey(norm, year)]; ok && len(entries) > 0 {
		return entries
	}

	// Release-year drift between catalog and filenames is common.
	if year > 0 {
		for _, candidate := range []int{year - yearTolerance, year + yearTolerance} {
			if entries, ok := snap.Movies[MovieKey(norm, candidate)]; ok && len(entries) > 0 {
				return entries
			}
		}
	}

	if entries, ok := snap.Movies[MovieKey(norm, 0)]; ok && len(entries) > 0 {
		return entries
	}

	var best []hosting.VideoEntry
	bestScore := 0.0
	for key, entries := range snap.Movies {
		keyTitle, keyYear, agnostic := splitMovieKey(key)
		if !agnostic && year > 0 {
			diff := keyYear - year
			if diff < 0 {
				diff = -diff
			}
			if diff > yearTolerance {
				continue
			}
		}
		score := parser.OverlapScore(norm, keyTitle)
		if score >= movieFuzzyThreshold && score > bestScore {
			bestScore = score
			best = entries
		}
	}
	if best != nil {
		return best
	}

	return []hosting.VideoEntry{}
}

// LookupEpisode resolves an episode request: exact key first, then a fuzzy
// scan restricted to keys with the same season and episode. Returns an
// empty slice on a total miss.
func (s *Store) LookupEpisode(title string, season, episode int) []hosting.VideoEntry {
	snap := s.current.Load()
	norm := parser.NormalizeTitle(title)
	if norm == "" {
		return []hosting.VideoEntry{}
	}

	if entries, ok := snap.Series[SeriesKey(norm, season, episode)]; ok && len(entries) > 0 {
		return entries
	}

	var best []hosting.VideoEntry
	bestScore := 0.0
	for key, entries := range snap.Series {
		keyTitle, keySeason, keyEpisode, ok := splitSeriesKey(key)
		if !ok || keySeason != season || keyEpisode != episode {
			continue
		}
		score := parser.OverlapScore(norm, keyTitle)
		if score >= episodeFuzzyThreshold && score > bestScore {
			bestScore = score
			best = entries
		}
	}
	if best != nil {
		return best
	}

	return []hosting.VideoEntry{}
}

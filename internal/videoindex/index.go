// Package videoindex maintains the precomputed in-memory mapping from
// canonical content keys to playable video entries, rebuilt periodically
// from every hosting provider's full listing. Readers always see a complete
// snapshot: rebuilds assemble fresh maps off to the side and swap them in
// atomically.
package videoindex

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/skyflixer/skyflixer/internal/hosting"
)

// yearAgnostic is the year component used for entries whose filename
// carries no year token.
const yearAgnostic = "any"

// MovieKey builds the movie index key for a normalized title and year.
// A zero year produces the year-agnostic key.
func MovieKey(normalizedTitle string, year int) string {
	if year <= 0 {
		return normalizedTitle + ":" + yearAgnostic
	}
	return fmt.Sprintf("%s:%d", normalizedTitle, year)
}

// SeriesKey builds the series index key for a normalized title, season and
// episode.
func SeriesKey(normalizedTitle string, season, episode int) string {
	return fmt.Sprintf("%s:%d:%d", normalizedTitle, season, episode)
}

// splitMovieKey splits a movie key into its title and year components.
// Normalized titles never contain ':' so the last separator is unambiguous.
func splitMovieKey(key string) (title string, year int, agnostic bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return key, 0, false
	}
	title = key[:idx]
	yearPart := key[idx+1:]
	if yearPart == yearAgnostic {
		return title, 0, true
	}
	year, _ = strconv.Atoi(yearPart)
	return title, year, false
}

// splitSeriesKey splits a series key into title, season and episode.
func splitSeriesKey(key string) (title string, season, episode int, ok bool) {
	epIdx := strings.LastIndex(key, ":")
	if epIdx < 0 {
		return "", 0, 0, false
	}
	seasonIdx := strings.LastIndex(key[:epIdx], ":")
	if seasonIdx < 0 {
		return "", 0, 0, false
	}
	season, err1 := strconv.Atoi(key[seasonIdx+1 : epIdx])
	episode, err2 := strconv.Atoi(key[epIdx+1:])
	if err1 != nil || err2 != nil {
		return "", 0, 0, false
	}
	return key[:seasonIdx], season, episode, true
}

// HostStats records per-host build counters. Fetched counts every raw
// record a host returned; Indexed counts the ones that parsed into an
// indexable entry.
type HostStats struct {
	Indexed int    `json:"indexed"`
	Fetched int    `json:"fetched"`
	Error   string `json:"error,omitempty"`
}

// Stats is the snapshot metadata for a build, overwritten wholesale with
// each rebuild.
type Stats struct {
	Built      bool                 `json:"built"`
	BuildID    string               `json:"buildId,omitempty"`
	BuiltAt    time.Time            `json:"builtAt,omitzero"`
	DurationMs int64                `json:"durationMs"`
	MovieKeys  int                  `json:"movieKeys"`
	SeriesKeys int                  `json:"seriesKeys"`
	Hosts      map[string]HostStats `json:"hosts,omitempty"`
}

// Snapshot is one immutable generation of the index. Never mutated after
// the builder publishes it.
type Snapshot struct {
	Movies map[string][]hosting.VideoEntry
	Series map[string][]hosting.VideoEntry
	Stats  Stats
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Movies: map[string][]hosting.VideoEntry{},
		Series: map[string][]hosting.VideoEntry{},
	}
}

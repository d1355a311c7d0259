package videoindex

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skyflixer/skyflixer/internal/config"
	"github.com/skyflixer/skyflixer/internal/hosting"
	"github.com/skyflixer/skyflixer/internal/hosting/parser"
)

// ErrRebuildInFlight is returned when a rebuild is requested while another
// one is still running. Scheduled overlaps are skipped, not queued.
var ErrRebuildInFlight = errors.New("index rebuild already in flight")

// Fetcher fetches every page of a provider listing endpoint.
type Fetcher interface {
	FetchAllPages(ctx context.Context, endpoint, apiKey string, timeout time.Duration) ([]hosting.RawVideo, error)
}

// Broadcaster interface for sending events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Builder rebuilds the index from every enabled host and swaps the result
// into the store. Host failures are isolated: a host that errors on both
// endpoints is recorded with zero counts and the rebuild carries on.
type Builder struct {
	store       *Store
	fetcher     Fetcher
	cfg         *config.Config
	broadcaster Broadcaster
	logger      zerolog.Logger
	building    atomic.Bool
}

// NewBuilder creates a new index builder writing into store.
func NewBuilder(store *Store, fetcher Fetcher, cfg *config.Config, logger zerolog.Logger) *Builder {
	return &Builder{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With().Str("component", "videoindex").Logger(),
	}
}

// SetBroadcaster sets the WebSocket broadcaster for rebuild events.
func (b *Builder) SetBroadcaster(broadcaster Broadcaster) {
	b.broadcaster = broadcaster
}

// Rebuilding reports whether a rebuild is currently running.
func (b *Builder) Rebuilding() bool {
	return b.building.Load()
}

// hostBuildResult is one host's contribution to a rebuild pass.
type hostBuildResult struct {
	host    string
	movies  map[string][]hosting.VideoEntry
	series  map[string][]hosting.VideoEntry
	fetched int
	indexed int
	err     error
}

// Rebuild fetches, parses and indexes every enabled host, then atomically
// replaces the live snapshot. The previous snapshot stays fully
// serviceable until the swap. Returns ErrRebuildInFlight if another
// rebuild is still running.
func (b *Builder) Rebuild(ctx context.Context) (*Stats, error) {
	if !b.building.CompareAndSwap(false, true) {
		return nil, ErrRebuildInFlight
	}
	defer b.building.Store(false)

	start := time.Now()
	buildID := uuid.NewString()

	b.logger.Info().Str("buildId", buildID).Msg("index rebuild started")
	if b.broadcaster != nil {
		b.broadcaster.Broadcast("index:rebuild:started", map[string]interface{}{
			"buildId": buildID,
		})
	}

	var wg sync.WaitGroup
	results := make(chan hostBuildResult, len(config.HostNames))

	for _, name := range config.HostNames {
		hc := b.cfg.Host(name)
		if !hc.Enabled {
			continue
		}
		wg.Add(1)
		go func(name string, hc config.HostConfig) {
			defer wg.Done()
			results <- b.buildHost(ctx, name, hc)
		}(name, hc)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byHost := make(map[string]hostBuildResult)
	for result := range results {
		byHost[result.host] = result
	}

	// Merge in fixed host scan order so entry lists are deterministic
	// regardless of which goroutine finished first.
	snap := emptySnapshot()
	hostStats := make(map[string]HostStats, len(byHost))
	for _, name := range config.HostNames {
		result, ok := byHost[name]
		if !ok {
			continue
		}
		stats := HostStats{Indexed: result.indexed, Fetched: result.fetched}
		if result.err != nil {
			stats.Error = result.err.Error()
		}
		hostStats[name] = stats

		for key, entries := range result.movies {
			snap.Movies[key] = append(snap.Movies[key], entries...)
		}
		for key, entries := range result.series {
			snap.Series[key] = append(snap.Series[key], entries...)
		}
	}

	snap.Stats = Stats{
		Built:      true,
		BuildID:    buildID,
		BuiltAt:    time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
		MovieKeys:  len(snap.Movies),
		SeriesKeys: len(snap.Series),
		Hosts:      hostStats,
	}

	b.store.swap(snap)

	b.logger.Info().
		Str("buildId", buildID).
		Int("movieKeys", snap.Stats.MovieKeys).
		Int("seriesKeys", snap.Stats.SeriesKeys).
		Dur("elapsed", time.Since(start)).
		Msg("index rebuild completed")

	if b.broadcaster != nil {
		b.broadcaster.Broadcast("index:rebuild:completed", snap.Stats)
	}

	stats := snap.Stats
	return &stats, nil
}

// buildHost fetches one host's full listing and routes every parseable
// record into fresh movie/series maps. Zero videos from the primary
// endpoint triggers the fallback, whether the primary errored or just
// returned nothing.
func (b *Builder) buildHost(ctx context.Context, name string, hc config.HostConfig) hostBuildResult {
	result := hostBuildResult{
		host:   name,
		movies: make(map[string][]hosting.VideoEntry),
		series: make(map[string][]hosting.VideoEntry),
	}

	primaryTimeout := time.Duration(hc.PrimaryTimeout) * time.Second
	fallbackTimeout := time.Duration(hc.FallbackTimeout) * time.Second

	var videos []hosting.RawVideo
	var err error

	if hc.PrimaryURL != "" {
		videos, err = b.fetcher.FetchAllPages(ctx, hc.PrimaryURL, hc.APIKey, primaryTimeout)
		if err != nil {
			b.logger.Warn().Err(err).Str("host", name).Msg("primary listing failed")
		}
	}

	if len(videos) == 0 && hc.FallbackURL != "" {
		videos, err = b.fetcher.FetchAllPages(ctx, hc.FallbackURL, hc.APIKey, fallbackTimeout)
		if err != nil {
			b.logger.Warn().Err(err).Str("host", name).Msg("fallback listing failed")
		}
	}

	if len(videos) == 0 {
		if err != nil {
			result.err = err
		}
		return result
	}

	result.fetched = len(videos)

	for _, video := range videos {
		parsed := parser.ParseFilename(video.VideoName())
		if parsed == nil || parsed.NormalizedTitle == "" {
			// Unparseable or untitled; counts toward fetched only.
			continue
		}

		entry := hosting.NewVideoEntry(name, video)
		if entry.ID == "" {
			continue
		}

		if parsed.IsSeries() {
			key := SeriesKey(parsed.NormalizedTitle, parsed.Season, parsed.Episode)
			result.series[key] = append(result.series[key], entry)
		} else {
			key := MovieKey(parsed.NormalizedTitle, parsed.Year)
			result.movies[key] = append(result.movies[key], entry)
		}
		result.indexed++
	}

	b.logger.Debug().
		Str("host", name).
		Int("fetched", result.fetched).
		Int("indexed", result.indexed).
		Msg("host build completed")

	return result
}

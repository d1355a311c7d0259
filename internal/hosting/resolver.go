package hosting

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyflixer/skyflixer/internal/cache"
	"github.com/skyflixer/skyflixer/internal/config"
	"github.com/skyflixer/skyflixer/internal/hosting/parser"
)

// Broadcaster interface for sending events to clients.
type Broadcaster interface {
	Broadcast(msgType string, payload interface{}) error
}

// Request identifies the content a caller wants a playable link for.
type Request struct {
	Title   string `json:"title"`
	Type    string `json:"type"` // "movie" or "series"
	Year    int    `json:"year,omitempty"`
	Season  int    `json:"season,omitempty"`
	Episode int    `json:"episode,omitempty"`
}

// IsSeries reports whether the request targets an episode.
func (r Request) IsSeries() bool {
	return r.Type == "series"
}

// cacheKey builds the normalized cache key for the request tuple.
func (r Request) cacheKey() string {
	norm := parser.NormalizeTitle(r.Title)
	if r.IsSeries() {
		return fmt.Sprintf("resolve:series:%s:%d:%d", norm, r.Season, r.Episode)
	}
	return fmt.Sprintf("resolve:movie:%s:%d", norm, r.Year)
}

// HostResult is the outcome of resolving one request against one host.
type HostResult struct {
	Available   bool   `json:"available"`
	EmbedURL    string `json:"embedUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Source      string `json:"source,omitempty"` // "primary" or "fallback"
	Error       string `json:"error,omitempty"`
}

// AggregateResult is the combined outcome across all hosts.
type AggregateResult struct {
	Servers        map[string]HostResult `json:"servers"`
	AvailableCount int                   `json:"availableCount"`
	Request        Request               `json:"request"`
}

// Resolver performs live multi-host resolution for a single title,
// independent of the background index. Each host runs the same state
// machine: scan the primary listing for a content match, fall back to the
// secondary listing, and surface a per-host failure rather than erroring
// the aggregate.
type Resolver struct {
	client      *Client
	cfg         *config.Config
	cache       *cache.Cache
	resolveTTL  time.Duration
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewResolver creates a new on-demand resolver.
func NewResolver(client *Client, cfg *config.Config, resultCache *cache.Cache, logger zerolog.Logger) *Resolver {
	ttl := time.Duration(cfg.Index.ResolveTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Resolver{
		client:     client,
		cfg:        cfg,
		cache:      resultCache,
		resolveTTL: ttl,
		logger:     logger.With().Str("component", "resolver").Logger(),
	}
}

// SetBroadcaster sets the WebSocket broadcaster for resolve events.
func (r *Resolver) SetBroadcaster(broadcaster Broadcaster) {
	r.broadcaster = broadcaster
}

// Resolve runs the per-host state machine on every enabled host
// concurrently and aggregates the results. Successful aggregates
// (availableCount > 0) are cached; failed aggregates are not, so a
// transient failure can be retried immediately instead of pinning a miss
// for the TTL window.
func (r *Resolver) Resolve(ctx context.Context, req Request) *AggregateResult {
	key := req.cacheKey()
	if cached, ok := r.cache.Get(key); ok {
		if result, ok := cached.(*AggregateResult); ok {
			r.logger.Debug().Str("key", key).Msg("resolve served from cache")
			return result
		}
	}

	start := time.Now()

	type hostTaskResult struct {
		host   string
		result HostResult
	}

	var wg sync.WaitGroup
	results := make(chan hostTaskResult, len(config.HostNames))

	for _, name := range config.HostNames {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			results <- hostTaskResult{
				host:   name,
				result: r.resolveHost(ctx, name, req),
			}
		}(name)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	aggregate := &AggregateResult{
		Servers: make(map[string]HostResult, len(config.HostNames)),
		Request: req,
	}
	for taskResult := range results {
		aggregate.Servers[taskResult.host] = taskResult.result
		if taskResult.result.Available {
			aggregate.AvailableCount++
		}
	}

	if aggregate.AvailableCount > 0 {
		r.cache.SetWithTTL(key, aggregate, r.resolveTTL)
	}

	r.logger.Info().
		Str("title", req.Title).
		Str("type", req.Type).
		Int("available", aggregate.AvailableCount).
		Dur("elapsed", time.Since(start)).
		Msg("resolve completed")

	if r.broadcaster != nil {
		r.broadcaster.Broadcast("resolve:completed", map[string]interface{}{
			"title":          req.Title,
			"type":           req.Type,
			"availableCount": aggregate.AvailableCount,
			"elapsedMs":      time.Since(start).Milliseconds(),
		})
	}

	return aggregate
}

// resolveHost runs the primary-then-fallback state machine for one host.
// Never returns an error past this boundary; failures become a per-host
// unavailable result with a reason string.
func (r *Resolver) resolveHost(ctx context.Context, name string, req Request) HostResult {
	hc := r.cfg.Host(name)
	if !hc.Enabled {
		return HostResult{Available: false, Error: "host disabled"}
	}
	if hc.PrimaryURL == "" {
		return HostResult{Available: false, Error: "host not configured"}
	}

	primaryTimeout := time.Duration(hc.PrimaryTimeout) * time.Second
	fallbackTimeout := time.Duration(hc.FallbackTimeout) * time.Second

	if result, ok := r.scanEndpoint(ctx, name, hc.PrimaryURL, hc.APIKey, primaryTimeout, req); ok {
		result.Source = "primary"
		return result
	}

	if hc.FallbackURL == "" {
		return HostResult{Available: false, Error: "no match on primary, no fallback configured"}
	}

	// Fallback gets a shorter budget; it is already the second attempt.
	if result, ok := r.scanEndpoint(ctx, name, hc.FallbackURL, hc.APIKey, fallbackTimeout, req); ok {
		result.Source = "fallback"
		return result
	}

	return HostResult{Available: false, Error: "no match on primary or fallback"}
}

// scanEndpoint fetches every page of one endpoint and scans the parsed
// filenames for a content match. The first match wins. On a match the
// per-video detail endpoint supplies explicit URLs; if that fetch fails the
// deterministic host template URLs are used instead.
func (r *Resolver) scanEndpoint(ctx context.Context, host, endpoint, apiKey string, timeout time.Duration, req Request) (HostResult, bool) {
	videos, err := r.client.FetchAllPages(ctx, endpoint, apiKey, timeout)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("host", host).
			Str("endpoint", endpoint).
			Msg("endpoint scan failed")
		return HostResult{}, false
	}

	for _, video := range videos {
		parsed := parser.ParseFilename(video.VideoName())
		if parsed == nil || parsed.NormalizedTitle == "" {
			continue
		}
		if !matchesRequest(parsed, req) {
			continue
		}

		entry := NewVideoEntry(host, video)

		embed, download, err := r.client.FetchDetail(ctx, endpoint, apiKey, entry.ID, timeout)
		if err != nil {
			r.logger.Debug().
				Err(err).
				Str("host", host).
				Str("id", entry.ID).
				Msg("detail fetch failed, using template URLs")
		} else {
			if embed != "" {
				entry.EmbedURL = embed
			}
			if download != "" {
				entry.DownloadURL = download
			}
		}

		return HostResult{
			Available:   true,
			EmbedURL:    entry.EmbedURL,
			DownloadURL: entry.DownloadURL,
		}, true
	}

	return HostResult{}, false
}

// matchesRequest is the content-match predicate: title equality or
// containment after normalization, plus year agreement for movies and
// season/episode agreement for series. A parsed record with no year is not
// rejected on year grounds; year drift is left to the lookup tiers.
func matchesRequest(parsed *parser.ParsedFilename, req Request) bool {
	reqNorm := parser.NormalizeTitle(req.Title)
	if reqNorm == "" {
		return false
	}

	titleMatches := parsed.NormalizedTitle == reqNorm ||
		strings.Contains(parsed.NormalizedTitle, reqNorm) ||
		strings.Contains(reqNorm, parsed.NormalizedTitle)
	if !titleMatches {
		return false
	}

	if req.IsSeries() {
		return parsed.Season == req.Season && parsed.Episode == req.Episode
	}

	if req.Year > 0 && parsed.Year > 0 && parsed.Year != req.Year {
		return false
	}
	return true
}

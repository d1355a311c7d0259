package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyflixer/skyflixer/internal/config"
)

var (
	ErrAPIKeyMissing = errors.New("metadata API key is not configured")
	ErrNotFound      = errors.New("title not found")
	ErrAPIError      = errors.New("metadata API error")
	ErrRateLimited   = errors.New("metadata API rate limited")
)

// Client is a TMDB API client for the catalog surface.
type Client struct {
	httpClient *http.Client
	cfg        config.MetadataConfig
	logger     zerolog.Logger
}

// NewClient creates a new metadata client.
func NewClient(cfg config.MetadataConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		cfg:    cfg,
		logger: logger.With().Str("component", "metadata").Logger(),
	}
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.cfg.APIKey != ""
}

// Trending fetches this week's trending titles for a media type.
func (c *Client) Trending(ctx context.Context, mediaType string, page int) (*CatalogPage, error) {
	endpoint := fmt.Sprintf("%s/trending/%s/week", c.cfg.BaseURL, tmdbMediaType(mediaType))
	return c.fetchList(ctx, mediaType, endpoint, pageParams(page))
}

// Popular fetches the popular list for a media type.
func (c *Client) Popular(ctx context.Context, mediaType string, page int) (*CatalogPage, error) {
	endpoint := fmt.Sprintf("%s/%s/popular", c.cfg.BaseURL, tmdbMediaType(mediaType))
	return c.fetchList(ctx, mediaType, endpoint, pageParams(page))
}

// TopRated fetches the top-rated list for a media type.
func (c *Client) TopRated(ctx context.Context, mediaType string, page int) (*CatalogPage, error) {
	endpoint := fmt.Sprintf("%s/%s/top_rated", c.cfg.BaseURL, tmdbMediaType(mediaType))
	return c.fetchList(ctx, mediaType, endpoint, pageParams(page))
}

// Discover runs a filtered discover query for a media type.
func (c *Client) Discover(ctx context.Context, mediaType string, filters DiscoverFilters) (*CatalogPage, error) {
	endpoint := fmt.Sprintf("%s/discover/%s", c.cfg.BaseURL, tmdbMediaType(mediaType))

	params := pageParams(filters.Page)
	if filters.Genre != "" {
		params.Set("with_genres", filters.Genre)
	}
	if filters.Year > 0 {
		if mediaType == "movie" {
			params.Set("primary_release_year", strconv.Itoa(filters.Year))
		} else {
			params.Set("first_air_date_year", strconv.Itoa(filters.Year))
		}
	}
	if filters.SortBy != "" {
		params.Set("sort_by", filters.SortBy)
	}

	return c.fetchList(ctx, mediaType, endpoint, params)
}

// Search searches titles by query for a media type.
func (c *Client) Search(ctx context.Context, mediaType, query string, page int) (*CatalogPage, error) {
	endpoint := fmt.Sprintf("%s/search/%s", c.cfg.BaseURL, tmdbMediaType(mediaType))

	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")

	return c.fetchList(ctx, mediaType, endpoint, params)
}

// GetMovie gets detailed movie info by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, id int) (*CatalogItem, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/movie/%d", c.cfg.BaseURL, id)

	var details movieDetails
	if err := c.doRequest(ctx, endpoint, url.Values{}, &details); err != nil {
		return nil, err
	}

	item := c.movieDetailsToItem(details)
	return &item, nil
}

// GetSeries gets detailed series info by TMDB ID.
func (c *Client) GetSeries(ctx context.Context, id int) (*CatalogItem, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	endpoint := fmt.Sprintf("%s/tv/%d", c.cfg.BaseURL, id)

	var details tvDetails
	if err := c.doRequest(ctx, endpoint, url.Values{}, &details); err != nil {
		return nil, err
	}

	item := c.tvDetailsToItem(details)
	return &item, nil
}

// ImageURL returns a full image URL for a given path and size.
// Size options: "w92", "w154", "w185", "w342", "w500", "w780", "original"
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s%s", c.cfg.ImageBaseURL, size, path)
}

// fetchList fetches and normalizes one page of a list endpoint.
func (c *Client) fetchList(ctx context.Context, mediaType, endpoint string, params url.Values) (*CatalogPage, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	if mediaType == "movie" {
		var response movieListResponse
		if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
			return nil, err
		}
		results := make([]CatalogItem, len(response.Results))
		for i, m := range response.Results {
			results[i] = c.movieToItem(m)
		}
		return &CatalogPage{Page: response.Page, TotalPages: response.TotalPages, Results: results}, nil
	}

	var response tvListResponse
	if err := c.doRequest(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}
	results := make([]CatalogItem, len(response.Results))
	for i, tv := range response.Results {
		results[i] = c.tvToItem(tv)
	}
	return &CatalogPage{Page: response.Page, TotalPages: response.TotalPages, Results: results}, nil
}

// doRequest performs an HTTP GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	params.Set("api_key", c.cfg.APIKey)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", endpoint).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Error().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("metadata API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func tmdbMediaType(mediaType string) string {
	if mediaType == "series" {
		return "tv"
	}
	return "movie"
}

func pageParams(page int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	return params
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}

func (c *Client) movieToItem(m movieResult) CatalogItem {
	item := CatalogItem{
		ID:        m.ID,
		Type:      "movie",
		Title:     m.Title,
		Year:      yearOf(m.ReleaseDate),
		Overview:  m.Overview,
		Rating:    m.VoteAverage,
		VoteCount: m.VoteCount,
	}
	if m.PosterPath != nil {
		item.PosterURL = c.ImageURL(*m.PosterPath, "w500")
	}
	if m.BackdropPath != nil {
		item.BackdropURL = c.ImageURL(*m.BackdropPath, "w780")
	}
	return item
}

func (c *Client) tvToItem(tv tvResult) CatalogItem {
	item := CatalogItem{
		ID:        tv.ID,
		Type:      "series",
		Title:     tv.Name,
		Year:      yearOf(tv.FirstAirDate),
		Overview:  tv.Overview,
		Rating:    tv.VoteAverage,
		VoteCount: tv.VoteCount,
	}
	if tv.PosterPath != nil {
		item.PosterURL = c.ImageURL(*tv.PosterPath, "w500")
	}
	if tv.BackdropPath != nil {
		item.BackdropURL = c.ImageURL(*tv.BackdropPath, "w780")
	}
	return item
}

func (c *Client) movieDetailsToItem(details movieDetails) CatalogItem {
	genres := make([]string, len(details.Genres))
	for i, g := range details.Genres {
		genres[i] = g.Name
	}

	item := CatalogItem{
		ID:        details.ID,
		Type:      "movie",
		Title:     details.Title,
		Year:      yearOf(details.ReleaseDate),
		Overview:  details.Overview,
		Rating:    details.VoteAverage,
		VoteCount: details.VoteCount,
		Runtime:   details.Runtime,
		Genres:    genres,
		ImdbID:    details.ImdbID,
		Tagline:   details.Tagline,
		Status:    details.Status,
	}
	if details.PosterPath != nil {
		item.PosterURL = c.ImageURL(*details.PosterPath, "w500")
	}
	if details.BackdropPath != nil {
		item.BackdropURL = c.ImageURL(*details.BackdropPath, "w780")
	}
	return item
}

func (c *Client) tvDetailsToItem(details tvDetails) CatalogItem {
	genres := make([]string, len(details.Genres))
	for i, g := range details.Genres {
		genres[i] = g.Name
	}

	item := CatalogItem{
		ID:        details.ID,
		Type:      "series",
		Title:     details.Name,
		Year:      yearOf(details.FirstAirDate),
		Overview:  details.Overview,
		Rating:    details.VoteAverage,
		VoteCount: details.VoteCount,
		Genres:    genres,
		Status:    details.Status,
		Seasons:   details.NumberOfSeasons,
		Episodes:  details.NumberOfEpisodes,
	}
	if len(details.EpisodeRunTime) > 0 {
		item.Runtime = details.EpisodeRunTime[0]
	}
	if details.PosterPath != nil {
		item.PosterURL = c.ImageURL(*details.PosterPath, "w500")
	}
	if details.BackdropPath != nil {
		item.BackdropURL = c.ImageURL(*details.BackdropPath, "w780")
	}
	return item
}

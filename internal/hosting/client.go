package hosting

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Client fetches video listings and details from hosting providers.
// Timeouts are applied per request, not on the shared http.Client, because
// primary and fallback endpoints carry different budgets.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a new hosting provider client.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		logger:     logger.With().Str("component", "hosting").Logger(),
	}
}

// FetchAllPages exhaustively fetches every page of a provider's listing
// endpoint. Page 1 is fetched first to discover the page count; remaining
// pages are fetched concurrently. A single page failure degrades to an empty
// contribution rather than failing the whole fetch; partial results are
// preferred over total failure.
func (c *Client) FetchAllPages(ctx context.Context, endpoint, apiKey string, timeout time.Duration) ([]RawVideo, error) {
	videos, totalPages, err := c.fetchPage(ctx, endpoint, apiKey, 1, timeout)
	if err != nil {
		return nil, fmt.Errorf("fetch page 1: %w", err)
	}

	if totalPages <= 1 {
		return videos, nil
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("totalPages", totalPages).
		Msg("fetching remaining pages")

	type pageResult struct {
		page   int
		videos []RawVideo
	}

	var wg sync.WaitGroup
	results := make(chan pageResult, totalPages-1)

	for page := 2; page <= totalPages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			pageVideos, _, err := c.fetchPage(ctx, endpoint, apiKey, page, timeout)
			if err != nil {
				// Partial page failure is swallowed; siblings keep going.
				c.logger.Warn().
					Err(err).
					Str("endpoint", endpoint).
					Int("page", page).
					Msg("page fetch failed, contributing nothing")
				return
			}
			results <- pageResult{page: page, videos: pageVideos}
		}(page)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for result := range results {
		videos = append(videos, result.videos...)
	}

	return videos, nil
}

// fetchPage fetches a single listing page.
func (c *Client) fetchPage(ctx context.Context, endpoint, apiKey string, page int, timeout time.Duration) ([]RawVideo, int, error) {
	body, err := c.get(ctx, endpoint, apiKey, url.Values{"page": {strconv.Itoa(page)}}, timeout)
	if err != nil {
		return nil, 0, err
	}

	videos, totalPages, err := decodeListing(body)
	if err != nil {
		return nil, 0, err
	}

	return videos, totalPages, nil
}

// FetchDetail fetches the per-video detail record at {endpoint}/{id} and
// returns explicit embed/download URLs. Either may be empty.
func (c *Client) FetchDetail(ctx context.Context, endpoint, apiKey, id string, timeout time.Duration) (embed, download string, err error) {
	detailURL := fmt.Sprintf("%s/%s", endpoint, url.PathEscape(id))

	body, err := c.get(ctx, detailURL, apiKey, nil, timeout)
	if err != nil {
		return "", "", err
	}

	return decodeDetail(body)
}

// get performs an HTTP GET with the provider API-token header and a
// per-request timeout.
func (c *Client) get(ctx context.Context, endpoint, apiKey string, params url.Values, timeout time.Duration) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if len(params) > 0 {
		query := reqURL.Query()
		for key, values := range params {
			for _, v := range values {
				query.Set(key, v)
			}
		}
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Token", apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/skyflixer/skyflixer/internal/config"
)

func newTestClient(server *httptest.Server) *Client {
	cfg := config.MetadataConfig{
		APIKey:       "test-api-key",
		BaseURL:      server.URL,
		ImageBaseURL: "https://image.tmdb.org/t/p",
		Timeout:      5,
	}
	return NewClient(cfg, zerolog.Nop())
}

func TestClient_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{"with key", "abc123", true},
		{"without key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(config.MetadataConfig{APIKey: tt.apiKey}, zerolog.Nop())
			if got := client.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_Search_Movies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if query := r.URL.Query().Get("query"); query != "Matrix" {
			t.Errorf("unexpected query: %s", query)
		}
		if key := r.URL.Query().Get("api_key"); key != "test-api-key" {
			t.Errorf("unexpected api key: %s", key)
		}

		poster := "/matrix.jpg"
		response := movieListResponse{
			Page:       1,
			TotalPages: 1,
			Results: []movieResult{
				{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", PosterPath: &poster},
				{ID: 604, Title: "The Matrix Reloaded", ReleaseDate: "2003-05-15"},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)
	page, err := client.Search(context.Background(), "movie", "Matrix", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(page.Results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(page.Results))
	}
	first := page.Results[0]
	if first.Title != "The Matrix" {
		t.Errorf("Title = %q, want %q", first.Title, "The Matrix")
	}
	if first.Year != 1999 {
		t.Errorf("Year = %d, want 1999", first.Year)
	}
	if first.Type != "movie" {
		t.Errorf("Type = %q, want movie", first.Type)
	}
	if first.PosterURL != "https://image.tmdb.org/t/p/w500/matrix.jpg" {
		t.Errorf("PosterURL = %q", first.PosterURL)
	}
}

func TestClient_Trending_Series(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trending/tv/week" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		response := tvListResponse{
			Page:       1,
			TotalPages: 3,
			Results: []tvResult{
				{ID: 70523, Name: "Dark", FirstAirDate: "2017-12-01"},
			},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := newTestClient(server)
	page, err := client.Trending(context.Background(), "series", 1)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", page.TotalPages)
	}
	if page.Results[0].Type != "series" || page.Results[0].Year != 2017 {
		t.Errorf("unexpected result: %+v", page.Results[0])
	}
}

func TestClient_Discover_YearParamPerType(t *testing.T) {
	var gotMovieParam, gotTVParam string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/discover/movie":
			gotMovieParam = r.URL.Query().Get("primary_release_year")
			json.NewEncoder(w).Encode(movieListResponse{Page: 1, TotalPages: 1})
		case "/discover/tv":
			gotTVParam = r.URL.Query().Get("first_air_date_year")
			json.NewEncoder(w).Encode(tvListResponse{Page: 1, TotalPages: 1})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newTestClient(server)
	filters := DiscoverFilters{Year: 2024, Page: 1}
	if _, err := client.Discover(context.Background(), "movie", filters); err != nil {
		t.Fatalf("Discover(movie) error = %v", err)
	}
	if _, err := client.Discover(context.Background(), "series", filters); err != nil {
		t.Fatalf("Discover(series) error = %v", err)
	}

	if gotMovieParam != "2024" {
		t.Errorf("movie year param = %q, want 2024", gotMovieParam)
	}
	if gotTVParam != "2024" {
		t.Errorf("tv year param = %q, want 2024", gotTVParam)
	}
}

func TestClient_GetMovie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/27205" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(movieDetails{
			ID:          27205,
			Title:       "Inception",
			ReleaseDate: "2010-07-15",
			Runtime:     148,
			ImdbID:      "tt1375666",
			Genres:      []genre{{ID: 28, Name: "Action"}},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	item, err := client.GetMovie(context.Background(), 27205)
	if err != nil {
		t.Fatalf("GetMovie() error = %v", err)
	}
	if item.Title != "Inception" || item.Year != 2010 || item.Runtime != 148 {
		t.Errorf("unexpected item: %+v", item)
	}
	if len(item.Genres) != 1 || item.Genres[0] != "Action" {
		t.Errorf("genres = %v", item.Genres)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
		{"unauthorized", http.StatusUnauthorized, ErrAPIError},
		{"server error", http.StatusInternalServerError, ErrAPIError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(errorResponse{StatusCode: tt.status, StatusMessage: "nope"})
			}))
			defer server.Close()

			client := newTestClient(server)
			_, err := client.GetMovie(context.Background(), 1)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_Unconfigured(t *testing.T) {
	client := NewClient(config.MetadataConfig{}, zerolog.Nop())
	if _, err := client.Trending(context.Background(), "movie", 1); !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("error = %v, want ErrAPIKeyMissing", err)
	}
}

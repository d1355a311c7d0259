package metadata

// movieResult is a raw TMDB movie record from list endpoints.
type movieResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

// tvResult is a raw TMDB TV record from list endpoints.
type tvResult struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	GenreIDs     []int   `json:"genre_ids"`
}

type movieListResponse struct {
	Page         int           `json:"page"`
	Results      []movieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type tvListResponse struct {
	Page         int        `json:"page"`
	Results      []tvResult `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// movieDetails is a raw TMDB movie detail record.
type movieDetails struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Runtime      int     `json:"runtime"`
	ImdbID       string  `json:"imdb_id"`
	Genres       []genre `json:"genres"`
	Tagline      string  `json:"tagline"`
	Status       string  `json:"status"`
}

// tvDetails is a raw TMDB TV detail record.
type tvDetails struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Overview         string  `json:"overview"`
	FirstAirDate     string  `json:"first_air_date"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	EpisodeRunTime   []int   `json:"episode_run_time"`
	Genres           []genre `json:"genres"`
	Status           string  `json:"status"`
	NumberOfSeasons  int     `json:"number_of_seasons"`
	NumberOfEpisodes int     `json:"number_of_episodes"`
}

type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// CatalogItem is the normalized catalog record served to clients. Movies and
// series share one shape so list endpoints can mix both.
type CatalogItem struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"` // "movie" or "series"
	Title       string   `json:"title"`
	Year        int      `json:"year,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	PosterURL   string   `json:"posterUrl,omitempty"`
	BackdropURL string   `json:"backdropUrl,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	VoteCount   int      `json:"voteCount,omitempty"`
	Runtime     int      `json:"runtime,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	ImdbID      string   `json:"imdbId,omitempty"`
	Tagline     string   `json:"tagline,omitempty"`
	Status      string   `json:"status,omitempty"`
	Seasons     int      `json:"seasons,omitempty"`
	Episodes    int      `json:"episodes,omitempty"`
}

// CatalogPage is one page of catalog results.
type CatalogPage struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Results    []CatalogItem `json:"results"`
}

// DiscoverFilters narrows a discover query.
type DiscoverFilters struct {
	Genre  string
	Year   int
	SortBy string
	Page   int
}

package metadata

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for the catalog surface.
type Handlers struct {
	service *Service
}

// NewHandlers creates new metadata handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the metadata routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/trending", h.Trending)
	g.GET("/popular", h.Popular)
	g.GET("/top-rated", h.TopRated)
	g.GET("/discover", h.Discover)
	g.GET("/search", h.Search)
	g.GET("/:type/:id", h.Detail)
}

// Trending returns this week's trending titles.
// GET /api/v1/metadata/trending?type=movie&page=1
func (h *Handlers) Trending(c echo.Context) error {
	mediaType, page, err := listParams(c)
	if err != nil {
		return err
	}
	result, err := h.service.Trending(c.Request().Context(), mediaType, page)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Popular returns the popular list.
// GET /api/v1/metadata/popular?type=series&page=2
func (h *Handlers) Popular(c echo.Context) error {
	mediaType, page, err := listParams(c)
	if err != nil {
		return err
	}
	result, err := h.service.Popular(c.Request().Context(), mediaType, page)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// TopRated returns the top-rated list.
// GET /api/v1/metadata/top-rated?type=movie
func (h *Handlers) TopRated(c echo.Context) error {
	mediaType, page, err := listParams(c)
	if err != nil {
		return err
	}
	result, err := h.service.TopRated(c.Request().Context(), mediaType, page)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Discover returns a filtered discover page.
// GET /api/v1/metadata/discover?type=movie&genre=28&year=2024&sort=popularity.desc
func (h *Handlers) Discover(c echo.Context) error {
	mediaType, page, err := listParams(c)
	if err != nil {
		return err
	}

	filters := DiscoverFilters{
		Genre:  c.QueryParam("genre"),
		SortBy: c.QueryParam("sort"),
		Page:   page,
	}
	if rawYear := c.QueryParam("year"); rawYear != "" {
		year, err := strconv.Atoi(rawYear)
		if err != nil || year < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		filters.Year = year
	}

	result, err := h.service.Discover(c.Request().Context(), mediaType, filters)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Search searches the catalog by query.
// GET /api/v1/metadata/search?type=movie&q=inception
func (h *Handlers) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	mediaType, page, err := listParams(c)
	if err != nil {
		return err
	}

	result, err := h.service.Search(c.Request().Context(), mediaType, query, page)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Detail returns a single title's detail record.
// GET /api/v1/metadata/movie/27205
// GET /api/v1/metadata/series/70523
func (h *Handlers) Detail(c echo.Context) error {
	mediaType := c.Param("type")
	if mediaType != "movie" && mediaType != "series" {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be movie or series")
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := h.service.Detail(c.Request().Context(), mediaType, id)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func listParams(c echo.Context) (mediaType string, page int, err error) {
	mediaType = c.QueryParam("type")
	if mediaType == "" {
		mediaType = "movie"
	}
	if mediaType != "movie" && mediaType != "series" {
		return "", 0, echo.NewHTTPError(http.StatusBadRequest, "type must be movie or series")
	}

	page = 1
	if rawPage := c.QueryParam("page"); rawPage != "" {
		page, err = strconv.Atoi(rawPage)
		if err != nil || page < 1 {
			return "", 0, echo.NewHTTPError(http.StatusBadRequest, "invalid page")
		}
	}
	return mediaType, page, nil
}

func providerError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAPIKeyMissing):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}

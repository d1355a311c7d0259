package videoindex

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skyflixer/skyflixer/internal/hosting/parser"
)

// Handlers provides HTTP handlers for index operations.
type Handlers struct {
	store   *Store
	trigger func() error
}

// NewHandlers creates new index handlers. trigger starts a background
// rebuild and returns ErrRebuildInFlight when one is already running.
func NewHandlers(store *Store, trigger func() error) *Handlers {
	return &Handlers{store: store, trigger: trigger}
}

// RegisterRoutes registers the index routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/status", h.Status)
	g.POST("/rebuild", h.Rebuild)
}

// RegisterLookup registers the read path under the videos group.
func (h *Handlers) RegisterLookup(g *echo.Group) {
	g.GET("/lookup", h.Lookup)
}

// Status returns the current snapshot statistics.
// GET /api/v1/index/status
func (h *Handlers) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Stats())
}

// Rebuild triggers a background index rebuild.
// POST /api/v1/index/rebuild
func (h *Handlers) Rebuild(c echo.Context) error {
	if err := h.trigger(); err != nil {
		if errors.Is(err, ErrRebuildInFlight) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"message": "Rebuild started",
	})
}

// Lookup answers a title query from the in-memory index without touching
// any host.
// GET /api/v1/videos/lookup?title=...&type=movie&year=2024
// GET /api/v1/videos/lookup?title=...&type=series&season=1&episode=8
func (h *Handlers) Lookup(c echo.Context) error {
	title := c.QueryParam("title")
	if title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if parser.NormalizeTitle(title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title has no searchable characters")
	}

	mediaType := c.QueryParam("type")
	switch mediaType {
	case "movie":
		year, err := intParam(c, "year", false)
		if err != nil {
			return err
		}
		entries := h.store.LookupMovie(title, year)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"title":   title,
			"type":    mediaType,
			"year":    year,
			"entries": entries,
		})
	case "series":
		season, err := intParam(c, "season", true)
		if err != nil {
			return err
		}
		episode, err := intParam(c, "episode", true)
		if err != nil {
			return err
		}
		entries := h.store.LookupEpisode(title, season, episode)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"title":   title,
			"type":    mediaType,
			"season":  season,
			"episode": episode,
			"entries": entries,
		})
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "type must be movie or series")
	}
}

func intParam(c echo.Context, name string, required bool) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		if required {
			return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is required")
		}
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

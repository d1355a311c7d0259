package hosting

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyflixer/skyflixer/internal/config"
	"github.com/skyflixer/skyflixer/internal/hosting/parser"
)

// Handlers provides HTTP handlers for on-demand resolution.
type Handlers struct {
	resolver *Resolver
	cfg      *config.Config
}

// NewHandlers creates new hosting handlers.
func NewHandlers(resolver *Resolver, cfg *config.Config) *Handlers {
	return &Handlers{resolver: resolver, cfg: cfg}
}

// RegisterRoutes registers the hosting routes.
func (h *Handlers) RegisterRoutes(videos, hosting *echo.Group) {
	videos.POST("/fetch", h.Fetch)
	hosting.GET("/status", h.Status)
}

// Fetch resolves a title against every enabled host and returns the
// per-host results. Validation failures never reach the network.
// POST /api/v1/videos/fetch
func (h *Handlers) Fetch(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := validateRequest(req); err != nil {
		return err
	}

	result := h.resolver.Resolve(c.Request().Context(), req)
	return c.JSON(http.StatusOK, result)
}

// Status reports per-host configuration state without any network call.
// GET /api/v1/hosting/status
func (h *Handlers) Status(c echo.Context) error {
	hosts := make(map[string]interface{}, len(config.HostNames))
	for _, name := range config.HostNames {
		hc := h.cfg.Host(name)
		hosts[name] = map[string]interface{}{
			"enabled":        hc.Enabled,
			"hasCredentials": hc.APIKey != "",
			"hasFallback":    hc.FallbackURL != "",
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"hosts": hosts,
	})
}

func validateRequest(req Request) error {
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if parser.NormalizeTitle(req.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title has no searchable characters")
	}

	switch req.Type {
	case "movie":
		if req.Year <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "year is required for movies")
		}
	case "series":
		if req.Season <= 0 || req.Episode <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "season and episode are required for series")
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "type must be movie or series")
	}
	return nil
}

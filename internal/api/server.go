// Package api assembles the HTTP surface: middleware, route registration,
// and the process status endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/skyflixer/skyflixer/internal/config"
	"github.com/skyflixer/skyflixer/internal/hosting"
	"github.com/skyflixer/skyflixer/internal/metadata"
	"github.com/skyflixer/skyflixer/internal/scheduler"
	"github.com/skyflixer/skyflixer/internal/videoindex"
	"github.com/skyflixer/skyflixer/internal/websocket"
)

// Server handles HTTP requests for the Skyflixer API.
type Server struct {
	echo      *echo.Echo
	hub       *websocket.Hub
	logger    zerolog.Logger
	cfg       *config.Config
	startedAt time.Time

	store           *videoindex.Store
	rebuildTrigger  func() error
	resolver        *hosting.Resolver
	metadataService *metadata.Service
	sched           *scheduler.Scheduler
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, hub *websocket.Hub, store *videoindex.Store, rebuildTrigger func() error, resolver *hosting.Resolver, metadataService *metadata.Service, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:            e,
		hub:             hub,
		logger:          logger.With().Str("component", "api").Logger(),
		cfg:             cfg,
		startedAt:       time.Now(),
		store:           store,
		rebuildTrigger:  rebuildTrigger,
		resolver:        resolver,
		metadataService: metadataService,
		sched:           sched,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// Request body size limit
	s.echo.Use(middleware.BodyLimit("1M"))

	// CORS
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Skip compression for WebSocket
			return c.Request().Header.Get("Upgrade") == "websocket"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	// WebSocket events
	s.echo.GET("/ws", s.hub.HandleWebSocket)

	// API v1 group
	api := s.echo.Group("/api/v1")

	// System routes
	api.GET("/status", s.getStatus)
	api.GET("/tasks", s.listTasks)

	videos := api.Group("/videos")
	hostingGroup := api.Group("/hosting")

	// Resolution routes (live multi-host fetch + host status)
	hostingHandlers := hosting.NewHandlers(s.resolver, s.cfg)
	hostingHandlers.RegisterRoutes(videos, hostingGroup)

	// Index routes (status, rebuild trigger, in-memory lookup)
	indexHandlers := videoindex.NewHandlers(s.store, s.rebuildTrigger)
	indexHandlers.RegisterRoutes(api.Group("/index"))
	indexHandlers.RegisterLookup(videos)

	// Catalog routes
	metadataHandlers := metadata.NewHandlers(s.metadataService)
	metadataHandlers.RegisterRoutes(api.Group("/metadata"))
}

// healthCheck returns basic liveness info.
// GET /health
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": config.Version,
	})
}

// getStatus returns process and index state for dashboards.
// GET /api/v1/status
func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":   config.Version,
		"uptimeSec": int64(time.Since(s.startedAt).Seconds()),
		"clients":   s.hub.ClientCount(),
		"index":     s.store.Stats(),
		"metadata":  map[string]bool{"configured": s.metadataService.IsConfigured()},
	})
}

// listTasks returns the registered background tasks.
// GET /api/v1/tasks
func (s *Server) listTasks(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sched.ListTasks())
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

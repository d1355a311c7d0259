package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/skyflixer/skyflixer/internal/api"
	"github.com/skyflixer/skyflixer/internal/cache"
	"github.com/skyflixer/skyflixer/internal/config"
	"github.com/skyflixer/skyflixer/internal/hosting"
	"github.com/skyflixer/skyflixer/internal/logger"
	"github.com/skyflixer/skyflixer/internal/metadata"
	"github.com/skyflixer/skyflixer/internal/scheduler"
	"github.com/skyflixer/skyflixer/internal/scheduler/tasks"
	"github.com/skyflixer/skyflixer/internal/videoindex"
	"github.com/skyflixer/skyflixer/internal/websocket"
)

func main() {
	// Optional .env for local development; env vars win over config file.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("logLevel", cfg.Logging.Level).
		Msg("starting skyflixer")

	// WebSocket hub for server events
	hub := websocket.NewHub()
	go hub.Run()

	// Shared caches: resolve results and catalog pages
	maxItems := cfg.Index.CacheMaxItems
	if maxItems <= 0 {
		maxItems = 1000
	}
	resolveCache := cache.New(cache.Config{
		TTL:      time.Duration(cfg.Index.ResolveTTLMin) * time.Minute,
		MaxItems: maxItems,
	})
	defer resolveCache.Close()

	catalogCache := cache.New(cache.Config{
		TTL:      time.Duration(cfg.Metadata.CacheTTLMin) * time.Minute,
		MaxItems: maxItems,
	})
	defer catalogCache.Close()

	// Hosting client, on-demand resolver, and the background index
	hostClient := hosting.NewClient(log.Logger)

	resolver := hosting.NewResolver(hostClient, cfg, resolveCache, log.Logger)
	resolver.SetBroadcaster(hub)

	store := videoindex.NewStore()
	builder := videoindex.NewBuilder(store, hostClient, cfg, log.Logger)
	builder.SetBroadcaster(hub)

	// Catalog metadata service
	metadataClient := metadata.NewClient(cfg.Metadata, log.Logger)
	metadataService := metadata.NewService(metadataClient, catalogCache, cfg.Metadata, log.Logger)
	if !metadataService.IsConfigured() {
		log.Warn().Msg("metadata API key not set, catalog endpoints disabled")
	}

	// Scheduler with the periodic index refresh
	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}
	if err := tasks.RegisterIndexRefreshTask(sched, builder, &cfg.Index); err != nil {
		log.Fatal().Err(err).Msg("failed to register index refresh task")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	rebuildTrigger := func() error {
		if builder.Rebuilding() {
			return videoindex.ErrRebuildInFlight
		}
		return sched.RunNow(tasks.IndexRefreshTaskID)
	}

	server := api.NewServer(cfg, hub, store, rebuildTrigger, resolver, metadataService, sched, log.Logger)

	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}

	log.Info().Msg("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/ecoleta/internal/config"
	"github.com/vbonduro/ecoleta/internal/db"
	"github.com/vbonduro/ecoleta/internal/geo"
	"github.com/vbonduro/ecoleta/internal/geo/ibge"
	"github.com/vbonduro/ecoleta/internal/imagestore/local"
	"github.com/vbonduro/ecoleta/internal/logging"
	"github.com/vbonduro/ecoleta/internal/service"
	"github.com/vbonduro/ecoleta/internal/store"
	"github.com/vbonduro/ecoleta/internal/telemetry"
	"github.com/vbonduro/ecoleta/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "ecoleta", cfg.OTelEndpoint)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		return
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Error("failed to open database", "driver", cfg.DBDriver, "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	images, err := local.New(cfg.UploadDir)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return
	}

	pointService := service.NewPointService(
		store.NewPointStore(database),
		store.NewItemStore(database),
		images,
		newDirectory(cfg, logger),
		cfg.GeoValidate,
		logger,
	)

	server := web.NewServer(pointService, images, web.Options{
		PublicURL:      cfg.PublicURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health:         database.PingContext,
	}, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
	}
}

// newDirectory returns nil when geography lookups are disabled.
func newDirectory(cfg *config.Config, logger *slog.Logger) geo.Directory {
	if !cfg.GeoEnabled {
		logger.Info("geography lookups disabled")
		return nil
	}
	logger.Info("using IBGE geography provider", "base_url", cfg.GeoBaseURL, "cache_ttl", cfg.GeoCacheTTL)
	return ibge.NewClient(cfg.GeoBaseURL, cfg.GeoCacheTTL)
}

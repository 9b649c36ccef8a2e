package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/city-risk-service/internal/adapter/firms"
	httpadapter "github.com/couchcryptid/city-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/city-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/city-risk-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/city-risk-service/internal/config"
	"github.com/couchcryptid/city-risk-service/internal/observability"
	"github.com/couchcryptid/city-risk-service/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	meteo := openmeteo.NewClient(cfg.OpenMeteoForecastURL, cfg.OpenMeteoAirURL, cfg.HTTPClientTimeout, cfg.OpenMeteoRPS, metrics, logger)
	fires := firms.NewClient(cfg.FIRMSURLs, cfg.HTTPClientTimeout, metrics, logger)
	collector := pipeline.NewLiveCollector(
		openmeteo.NewCachedWeather(meteo, cfg.CacheSize, clock, metrics),
		openmeteo.NewCachedAirQuality(meteo, cfg.CacheSize, clock, metrics),
		firms.NewCached(fires, cfg.CacheSize, clock, metrics),
		clock,
		logger,
	)

	// Band change publishing is feature-flagged via KAFKA_BROKERS.
	var publisher pipeline.Publisher = pipeline.Discard{}
	var writer *kafkaadapter.Writer
	if cfg.PublishEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.PublishEnabled.Set(1)
		logger.Info("band change publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("band change publishing disabled")
	}

	monitor := pipeline.New(cfg.Cities, collector, publisher, logger, metrics, pipeline.Options{
		RefreshInterval: cfg.RefreshInterval,
		MinConsecutive:  cfg.MinConsecutive,
		MaxWait:         cfg.MaxWait,
		Clock:           clock,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, monitor, monitor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start monitor loop.
	go func() {
		if err := monitor.Run(ctx); err != nil {
			logger.Error("monitor error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-history-etl/internal/adapter/artifact"
	"github.com/couchcryptid/weather-history-etl/internal/adapter/excel"
	httpadapter "github.com/couchcryptid/weather-history-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-history-etl/internal/adapter/kafka"
	"github.com/couchcryptid/weather-history-etl/internal/adapter/tianqihoubao"
	"github.com/couchcryptid/weather-history-etl/internal/config"
	"github.com/couchcryptid/weather-history-etl/internal/observability"
	"github.com/couchcryptid/weather-history-etl/internal/pipeline"
	"github.com/couchcryptid/weather-history-etl/internal/translit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store := artifact.NewStore(cfg.OutputDir)
	if err := store.EnsureDir(); err != nil {
		logger.Error("failed to prepare output directory", "error", err)
		os.Exit(1)
	}

	client := tianqihoubao.NewClient(cfg.BaseURL, cfg.UserAgent, cfg.FetchTimeout, store, logger)
	parser := tianqihoubao.NewParser(logger)

	loaders := []pipeline.Loader{excel.NewWriter(store, logger)}

	// Kafka record sink is feature-flagged via KAFKA_ENABLED.
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, kafkaWriter)
		logger.Info("kafka record sink enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka record sink disabled")
	}

	exporter := pipeline.New(client, parser, loaders, logger, metrics, cfg.LookbackDays)

	// Configured cities may be Chinese names; fetching needs slugs.
	slugs := make([]string, 0, len(cfg.Cities))
	for _, city := range cfg.Cities {
		slug := translit.CitySlug(city)
		if slug == "" {
			logger.Warn("skipping city with empty slug", "city", city)
			continue
		}
		slugs = append(slugs, slug)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, exporter, exporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start export loop.
	go func() {
		if err := exporter.Run(ctx, slugs, cfg.RefreshInterval); err != nil {
			logger.Error("exporter error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

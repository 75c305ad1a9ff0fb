package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jobtrends/common/cache"
	"jobtrends/common/cache/memory"
	"jobtrends/common/cache/redis"
	"jobtrends/common/telemetry"
	"jobtrends/services/ingestion/internal/api"
	"jobtrends/services/ingestion/internal/config"
	"jobtrends/services/ingestion/internal/messaging"
	"jobtrends/services/ingestion/internal/scheduler"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			log.Printf("failed to sync logger: %v", err)
		}
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger.Info("starting ingestion service",
		zap.String("dataset_url", cfg.DatasetURL),
		zap.Duration("dataset_timeout", cfg.DatasetTimeout),
		zap.Duration("polling_interval", cfg.PollingInterval))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer(ctx, "jobtrends-ingestion", cfg.OTelCollectorURL, logger)
	if err != nil {
		logger.Warn("tracing unavailable", zap.Error(err))
	} else {
		defer shutdownTracer()
	}

	datasetCache := newCache(cfg, logger)
	defer datasetCache.Close()

	client := api.NewDatasetClient(logger, cfg, datasetCache)

	publisher, err := messaging.NewPublisher(logger, cfg)
	if err != nil {
		logger.Fatal("failed to create NATS publisher", zap.Error(err))
	}
	defer publisher.Close()

	jobScheduler := scheduler.NewJobScheduler(client, publisher, logger, cfg)

	go func() {
		if err := jobScheduler.Start(ctx); err != nil && err != context.Canceled {
			logger.Error("job scheduler failed", zap.Error(err))
		}
	}()

	logger.Info("ingestion service started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()
	jobScheduler.Stop()
	logger.Info("shutdown complete")
}

func newCache(cfg *config.Config, logger *zap.Logger) cache.Cache {
	opts := cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process cache")
		return memory.New(opts)
	}
	return redis.New(opts)
}

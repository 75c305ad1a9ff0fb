package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"jobtrends/common/cache"
	"jobtrends/common/cache/memory"
	"jobtrends/common/cache/redis"
	"jobtrends/common/telemetry"
	"jobtrends/services/dashboard/internal/api"
	"jobtrends/services/dashboard/internal/config"
	"jobtrends/services/dashboard/internal/dataset"
	"jobtrends/services/dashboard/internal/events"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newCache,
			newStore,
			newDatasetLoader,
			api.NewJobsHandler,
			newFiberApp,
			newTracer,
		),
		fx.Invoke(
			registerTracing,
			registerInvalidation,
			registerServer,
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newCache(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) cache.Cache {
	opts := cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}

	var c cache.Cache
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process cache")
		c = memory.New(opts)
	} else {
		rc := redis.New(opts)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := rc.Ping(ctx); err != nil {
					logger.Warn("redis unreachable, dataset will be reloaded on each request", zap.Error(err))
				}
				return nil
			},
		})
		c = rc
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})
	return c
}

func newStore(cfg *config.Config, c cache.Cache, logger *zap.Logger) *dataset.Store {
	return dataset.NewStore(cfg.DatasetPath, c, cfg.CacheTTL, logger)
}

func newDatasetLoader(store *dataset.Store) api.DatasetLoader {
	return store
}

func newFiberApp(h *api.JobsHandler, cfg *config.Config) *fiber.App {
	return api.NewApp(h, api.ServerOptions{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AllowOrigins: cfg.AllowOrigins,
	})
}

func newTracer() trace.Tracer {
	return telemetry.GetTracer("jobtrends/dashboard")
}

func registerTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) {
	var shutdown func()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = telemetry.InitTracer(ctx, "jobtrends-dashboard", cfg.OTelCollectorURL, logger)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if shutdown != nil {
				shutdown()
			}
			return nil
		},
	})
}

// registerInvalidation subscribes to dataset events when NATS is configured.
func registerInvalidation(lc fx.Lifecycle, cfg *config.Config, store *dataset.Store, tracer trace.Tracer, logger *zap.Logger) error {
	if cfg.NATSURL == "" {
		logger.Info("NATS_URL not set, dataset refreshes only on cache expiry")
		return nil
	}

	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("dashboard-service"),
		nats.Timeout(cfg.NATSConnTimeout),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			nc.Close()
			return nil
		},
	})

	handler := events.NewHandler(logger, nc, tracer, store, cfg.EnrichedSubject)
	return handler.RegisterSubscriptions(lc)
}

func registerServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf(":%s", cfg.Port)
			go func() {
				if err := app.Listen(addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			logger.Info("dashboard API listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

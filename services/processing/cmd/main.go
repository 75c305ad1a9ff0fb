package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"jobtrends/common/cache"
	"jobtrends/common/cache/redis"
	"jobtrends/common/database"
	"jobtrends/common/telemetry"
	"jobtrends/services/processing/internal/config"
	"jobtrends/services/processing/internal/events"
	"jobtrends/services/processing/internal/processor"
	"jobtrends/services/processing/internal/repository"
	"jobtrends/services/processing/internal/source"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	inputPath  string
	outputPath string
	store      bool
	publish    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "processing",
	Short:         "Derive skill, remote, seniority and salary features from job postings",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Enrich a raw job postings CSV and write the cleaned table",
	Long: `Load a raw job postings table from a file or http(s) URL, drop incomplete
rows and provenance columns, derive feature columns and write the enriched CSV.

Examples:
  processing transform --input data/raw_jobs.csv --output data/cleaned_jobs.csv
  processing transform --input https://example.com/jobs.csv --store --publish`,
	RunE: runTransform,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Consume raw records from NATS, enrich them and store them in ClickHouse",
	RunE:  runServe,
}

func init() {
	transformCmd.Flags().StringVarP(&inputPath, "input", "i", "", "raw dataset path or URL (default $INPUT_PATH)")
	transformCmd.Flags().StringVarP(&outputPath, "output", "o", "", "enriched CSV path (default $OUTPUT_PATH)")
	transformCmd.Flags().BoolVar(&store, "store", false, "also store enriched rows in ClickHouse")
	transformCmd.Flags().BoolVar(&publish, "publish", false, "publish a dataset event on NATS when done")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(serveCmd)
}

func runTransform(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if inputPath != "" {
		cfg.InputPath = inputPath
	}
	if outputPath != "" {
		cfg.OutputPath = outputPath
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ProcessingTimeout)
	defer cancel()

	shutdown, err := telemetry.InitTracer(ctx, "jobtrends-processing", cfg.OTelCollectorURL, logger)
	if err != nil {
		logger.Warn("tracing unavailable", zap.Error(err))
	} else {
		defer shutdown()
	}

	var sourceCache cache.Cache
	if cfg.RedisAddr != "" {
		rc := newRedisCache(cfg)
		defer rc.Close()
		sourceCache = rc
	}
	loader := source.NewLoader(&http.Client{Timeout: cfg.HTTPTimeout}, sourceCache, cfg.CacheTTL, logger)

	var repo repository.JobRepository
	if store {
		conn, err := newClickHouseConnection(cfg, logger)
		if err != nil {
			logger.Error("Failed to connect to ClickHouse", zap.Error(err))
			return err
		}
		defer conn.Close()
		repo = repository.NewClickHouseRepository(conn, logger, cfg.BatchSize)
	}

	var publisher processor.DatasetPublisher
	if publish {
		nc, err := newNATSConnection(cfg)
		if err != nil {
			logger.Error("Failed to connect to NATS", zap.Error(err))
			return err
		}
		defer nc.Close()
		publisher = events.NewDatasetPublisher(nc, cfg.EnrichedSubject, logger)
	}

	p := processor.NewJobProcessor(logger, loader, repo, publisher)
	report, err := p.Transform(ctx, processor.TransformOptions{
		Input:   cfg.InputPath,
		Output:  cfg.OutputPath,
		Store:   store,
		Publish: publish,
	})
	if err != nil {
		logger.Error("Transform failed", zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s (%d read, %d dropped)\n",
		report.RowsWritten, cfg.OutputPath, report.RowsRead, report.RowsDropped)
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			newLogger,
			newNATSConnection,
			newClickHouseConnection,
			newJobRepository,
			newLoader,
			newDatasetPublisher,
			processor.NewJobProcessor,
			events.NewHandler,
			newTracer,
		),
		fx.Invoke(
			registerTracing,
			func(handler *events.Handler, lc fx.Lifecycle) error {
				return handler.RegisterSubscriptions(lc)
			},
		),
	)

	startCtx := context.Background()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx := context.Background()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("failed to stop processing service: %v", err)
		return err
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return zap.NewProduction()
}

func newNATSConnection(cfg *config.Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Timeout(cfg.NATSConnTimeout),
		nats.Name("processing-service"),
		nats.RetryOnFailedConnect(true),
	}
	return nats.Connect(cfg.NATSURL, opts...)
}

func newClickHouseConnection(cfg *config.Config, logger *zap.Logger) (clickhouse.Conn, error) {
	db, err := database.New(context.Background(), database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		return nil, err
	}
	return db.Conn(), nil
}

func newRedisCache(cfg *config.Config) *redis.Cache {
	return redis.New(cache.Options{
		DefaultTTL:    cfg.CacheTTL,
		RedisURL:      cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
}

func newJobRepository(conn clickhouse.Conn, logger *zap.Logger, cfg *config.Config) repository.JobRepository {
	return repository.NewClickHouseRepository(conn, logger, cfg.BatchSize)
}

func newLoader(cfg *config.Config, logger *zap.Logger) processor.TableLoader {
	return source.NewLoader(&http.Client{Timeout: cfg.HTTPTimeout}, nil, cfg.CacheTTL, logger)
}

func newDatasetPublisher(nc *nats.Conn, cfg *config.Config, logger *zap.Logger) processor.DatasetPublisher {
	return events.NewDatasetPublisher(nc, cfg.EnrichedSubject, logger)
}

func newTracer() trace.Tracer {
	return telemetry.GetTracer("jobtrends/processing")
}

func registerTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) {
	var shutdown func()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			shutdown, err = telemetry.InitTracer(ctx, "jobtrends-processing", cfg.OTelCollectorURL, logger)
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

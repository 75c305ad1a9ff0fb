package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"jobtrends/common/database"
	"jobtrends/common/database/schema"
	"jobtrends/common/database/schema/migrations"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.Options{
		DSN:             getEnv("CLICKHOUSE_DSN", "127.0.0.1:9000"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		Username:        getEnv("CLICKHOUSE_USERNAME", "default"),
		Password:        getEnv("CLICKHOUSE_PASSWORD", ""),
		Database:        getEnv("CLICKHOUSE_DATABASE", "jobtrends"),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)

	if len(os.Args) > 1 && os.Args[1] == "down" {
		steps := 1
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				steps = n
			}
		}
		rollback(ctx, migrator, logger, steps)
		return
	}

	applied, err := migrator.Migrate(ctx, migrations.All)
	if err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	logger.Info("All migrations completed successfully", zap.Int("applied", applied))
}

func rollback(ctx context.Context, migrator *schema.Migrator, logger *zap.Logger, steps int) {
	applied, err := migrator.GetAppliedMigrations(ctx)
	if err != nil {
		logger.Fatal("Failed to get applied migrations", zap.Error(err))
	}

	for i := len(migrations.All) - 1; i >= 0 && steps > 0; i-- {
		migration := migrations.All[i]
		if _, ok := applied[migration.Version]; !ok {
			continue
		}
		if err := migrator.RollbackMigration(ctx, migration); err != nil {
			logger.Fatal("Failed to rollback migration",
				zap.Int("version", migration.Version),
				zap.Error(err))
		}
		logger.Info("Rolled back migration",
			zap.Int("version", migration.Version),
			zap.String("description", migration.Description))
		steps--
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

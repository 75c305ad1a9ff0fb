package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatasetURL      string
	DatasetTimeout  time.Duration
	PollingInterval time.Duration
	PublishWorkers  int

	NATSURL         string
	NATSConnTimeout time.Duration
	RawSubject      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OTelCollectorURL string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		DatasetURL:      getEnvString("DATASET_URL", "https://drive.google.com/uc?export=download&id=1DijQab20Be2MVsHUE7ZBFFCM-VJKSWib"),
		DatasetTimeout:  getEnvDuration("DATASET_TIMEOUT", 30*time.Second),
		PollingInterval: getEnvDuration("POLLING_INTERVAL", 6*time.Hour),
		PublishWorkers:  getEnvInt("PUBLISH_WORKERS", 10),

		NATSURL:         getEnvString("NATS_URL", "nats://localhost:4222"),
		NATSConnTimeout: getEnvDuration("NATS_CONN_TIMEOUT", 10*time.Second),
		RawSubject:      getEnvString("NATS_RAW_SUBJECT", "jobs.raw"),

		RedisAddr:     getEnvString("REDIS_ADDR", ""),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CacheTTL:      getEnvDuration("CACHE_TTL", time.Hour),

		OTelCollectorURL: getEnvString("OTEL_COLLECTOR_URL", ""),
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTPPort     string
	AppMode      string
	FiberPrefork bool

	StoreCapacity int

	WorkerBufferSize int
	WorkerBatchSize  int
	WorkerFlushEvery time.Duration

	WebhookTimeout          time.Duration
	WebhookMaxRetries       int
	WebhookBaseDelay        time.Duration
	WebhookFailureThreshold int

	TrackRateLimit int

	RollupSchedule string

	// ClickHouse event sink; empty addr disables persistence.
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// Postgres rollup store; empty URL disables rollups.
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration
}

// Load reads configuration from environment variables with sane defaults.
// The durable stores are optional: without them the service runs on the
// in-memory store alone.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:     getEnv("HTTP_PORT", ":8080"),
		AppMode:      strings.ToLower(getEnv("APP_MODE", "dev")),
		FiberPrefork: parseBoolEnv("FIBER_PREFORK", false),

		StoreCapacity: parseIntEnv("STORE_CAPACITY", 1000),

		WorkerBufferSize: parseIntEnv("WORKER_BUFFER_SIZE", 1024),
		WorkerBatchSize:  parseIntEnv("WORKER_BATCH_SIZE", 100),
		WorkerFlushEvery: parseDurationEnv("WORKER_FLUSH_EVERY", 5*time.Second),

		WebhookTimeout:          parseDurationEnv("WEBHOOK_TIMEOUT", 10*time.Second),
		WebhookMaxRetries:       parseIntEnv("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:        parseDurationEnv("WEBHOOK_BASE_DELAY", time.Second),
		WebhookFailureThreshold: parseIntEnv("WEBHOOK_FAILURE_THRESHOLD", 5),

		TrackRateLimit: parseIntEnv("TRACK_RATE_LIMIT", 120),

		RollupSchedule: getEnv("ROLLUP_SCHEDULE", "5 0 * * *"),

		ClickHouseAddr:     os.Getenv("CLICKHOUSE_ADDR"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "analytics"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: os.Getenv("CLICKHOUSE_PASSWORD"),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: parseIntEnv("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns: parseIntEnv("DB_MAX_IDLE_CONNS", 5),
		DBConnLifetime: parseDurationEnv("DB_CONN_LIFETIME", 30*time.Minute),
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseIntEnv(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

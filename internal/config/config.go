package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config collects the runtime settings of the checkout service. Every field
// has a default suitable for local development.
type Config struct {
	HTTPPort       string
	RequestTimeout time.Duration
	MaxBodySize    int64

	// Postgres. The in-memory store is used when DBHost is empty.
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	// Redis session cache, disabled when empty.
	RedisAddr string

	// Kafka outbox publishing, disabled when no brokers are set.
	KafkaBrokers []string

	// Bolt-backed idempotency key store, disabled when empty.
	IdempotencyDBPath string

	// Optional YAML file with catalog products and payment instruments.
	SeedPath string
}

func Load() *Config {
	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBodySize:    int64(getEnvInt("MAX_BODY_SIZE", 1<<20)),

		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getEnvInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "checkout"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		IdempotencyDBPath: os.Getenv("IDEMPOTENCY_DB_PATH"),

		SeedPath: os.Getenv("SEED_PATH"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

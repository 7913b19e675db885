package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	HTTPAddr string

	// S3/MinIO/R2 blob storage. Credentials are optional on purpose: without
	// them ingestion answers 503 and retrieval answers an empty set.
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3UsePathStyle    bool
	Bucket            string

	// Blob key namespaces. session- is the live layout, analytics- the
	// legacy per-event layout still read during retrieval.
	SessionPrefix string
	LegacyPrefix  string

	// Retrieval bounds
	MaxBlobs         int
	FetchBatchSize   int
	FetchTimeout     time.Duration
	RetrievalBudget  time.Duration
	LogsCacheTTL     time.Duration

	// Redis & caching
	RedisURL string

	// RabbitMQ lead notifications
	RabbitURL      string
	RabbitExchange string

	// Admin cleanup
	CleanupConfirmationCode string
	RetentionWindow         time.Duration

	// Rate limiting (ingestion)
	RLEnabled bool
	RLLimit   int
	RLWindow  time.Duration

	LogLevel  string
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8086")

	cfg.S3Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3AccessKeyID = getEnv("S3_ACCESS_KEY_ID", "")
	cfg.S3SecretAccessKey = getEnv("S3_SECRET_ACCESS_KEY", "")
	cfg.S3Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3UsePathStyle = getEnv("S3_USE_PATH_STYLE", "true") == "true"
	cfg.Bucket = getEnv("S3_BUCKET", "analytics")

	cfg.SessionPrefix = getEnv("SESSION_PREFIX", "session-")
	cfg.LegacyPrefix = getEnv("LEGACY_PREFIX", "analytics-")

	cfg.MaxBlobs = getIntEnv("MAX_BLOBS", 10000)
	cfg.FetchBatchSize = getIntEnv("FETCH_BATCH_SIZE", 200)
	cfg.FetchTimeout = getDuration("FETCH_TIMEOUT", 5*time.Second)
	cfg.RetrievalBudget = getDuration("RETRIEVAL_BUDGET", 55*time.Second)
	cfg.LogsCacheTTL = getDuration("LOGS_CACHE_TTL", 15*time.Second)

	cfg.RedisURL = getEnv("REDIS_URL", "")

	cfg.RabbitURL = getEnv("RABBIT_URL", "")
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "jiwar.analytics")

	cfg.CleanupConfirmationCode = getEnv("CLEANUP_CONFIRMATION_CODE", "DELETE_ALL_LOGS_CONFIRM")
	cfg.RetentionWindow = getDuration("RETENTION_WINDOW", 30*24*time.Hour)

	cfg.RLEnabled = getEnv("RL_ENABLED", "true") == "true"
	cfg.RLLimit = getIntEnv("RL_IP_LIMIT", 120)
	cfg.RLWindow = getDuration("RL_IP_WINDOW", 1*time.Minute)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "console")

	cfg.HTTPReadTimeout = getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	cfg.HTTPWriteTimeout = getDuration("HTTP_WRITE_TIMEOUT", 60*time.Second)
	cfg.HTTPIdleTimeout = getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)

	// validation
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing S3_BUCKET")
	}
	if cfg.CleanupConfirmationCode == "" {
		return nil, fmt.Errorf("missing CLEANUP_CONFIRMATION_CODE")
	}

	return cfg, nil
}

// StorageConfigured reports whether the blob store has write credentials.
func (c *Config) StorageConfigured() bool {
	return c.S3AccessKeyID != "" && c.S3SecretAccessKey != ""
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getIntEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

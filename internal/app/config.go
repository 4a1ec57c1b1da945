package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config описывает настройки запуска приложения. Все значения читаются
// из переменных окружения с префиксом DOKAN_.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	// DatabaseURL пуст — работаем на in-memory хранилище (dev-режим).
	DatabaseURL string
	// RedisAddr пуст — корзины живут в памяти процесса.
	RedisAddr     string
	RedisPassword string
	// KafkaBrokers пуст — события outbox не публикуются наружу.
	KafkaBrokers []string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int

	IdempotencyCleanupInterval time.Duration

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                   ":8080",
		MetricsAddr:                ":9090",
		OutboxPollInterval:         time.Second,
		OutboxBatchSize:            100,
		IdempotencyCleanupInterval: 10 * time.Minute,
		ShutdownTimeout:            10 * time.Second,
	}
}

// LoadConfig читает конфигурацию из окружения поверх значений по умолчанию.
func LoadConfig() Config {
	cfg := DefaultConfig()

	cfg.HTTPAddr = envString("DOKAN_HTTP_ADDR", cfg.HTTPAddr)
	cfg.MetricsAddr = envString("DOKAN_METRICS_ADDR", cfg.MetricsAddr)
	cfg.DatabaseURL = envString("DOKAN_DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = envString("DOKAN_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = envString("DOKAN_REDIS_PASSWORD", cfg.RedisPassword)

	if brokers := envString("DOKAN_KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.OutboxPollInterval = envDuration("DOKAN_OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("DOKAN_OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.IdempotencyCleanupInterval = envDuration("DOKAN_IDEMPOTENCY_CLEANUP_INTERVAL", cfg.IdempotencyCleanupInterval)
	cfg.ShutdownTimeout = envDuration("DOKAN_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	return cfg
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

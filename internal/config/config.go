package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MessageMaxLength  int
	MessageEditWindow time.Duration

	FanoutMaxAttempts    int
	FanoutAttemptTimeout time.Duration
	FanoutDedupWindow    time.Duration

	RateLimitPost time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	var err error
	cfg.MessageMaxLength, err = strconv.Atoi(getEnv("MESSAGE_MAX_LENGTH", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid MESSAGE_MAX_LENGTH: %w", err)
	}
	cfg.MessageEditWindow, err = parseDuration(getEnv("MESSAGE_EDIT_WINDOW", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid MESSAGE_EDIT_WINDOW: %w", err)
	}
	cfg.FanoutMaxAttempts, err = strconv.Atoi(getEnv("FANOUT_MAX_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid FANOUT_MAX_ATTEMPTS: %w", err)
	}
	cfg.FanoutAttemptTimeout, err = parseDuration(getEnv("FANOUT_ATTEMPT_TIMEOUT", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FANOUT_ATTEMPT_TIMEOUT: %w", err)
	}
	cfg.FanoutDedupWindow, err = parseDuration(getEnv("FANOUT_DEDUP_WINDOW", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FANOUT_DEDUP_WINDOW: %w", err)
	}
	cfg.RateLimitPost, err = parseDuration(getEnv("RATE_LIMIT_POST", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_POST: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

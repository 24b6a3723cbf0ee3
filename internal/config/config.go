package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment (with
// an optional .env file for local development).
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	// Kafka brokers for lifecycle events; empty disables publishing.
	KafkaBrokers []string
	EventsTopic  string

	Session SessionConfig
	Seed    SeedConfig
}

// SessionConfig controls the client-held session cookie.
type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SeedConfig is the default admin created once at first boot if absent.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// LoadConfig reads configuration from the environment. A missing .env file is
// not an error.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "5000"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		EventsTopic:  getEnv("EVENTS_TOPIC", "tuition.assignment-events"),
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "mc_session"),
			TTL:        7 * 24 * time.Hour,
			Secure:     getEnv("ENVIRONMENT", "development") == "production",
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@tuition.com"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin-secure-access"),
			AdminName:     getEnv("SEED_ADMIN_NAME", "Super Admin"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

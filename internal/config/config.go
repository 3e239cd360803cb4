// Package config loads server settings from the environment (optionally
// seeded by a .env file) and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrNoSecret = errors.New("SECRET_KEY is required")

type Config struct {
	SecretKey    string
	DatabaseURL  string
	WebPort      string
	GRPCPort     string // empty disables the health server
	SessionTTL   time.Duration
	LogLevel     string
	LogJSON      bool
	CookieSecure bool
}

// Load reads .env (if present), the environment and then args, which
// override the environment.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(env("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	cfg := &Config{
		SecretKey:    os.Getenv("SECRET_KEY"),
		DatabaseURL:  env("DATABASE_URL", "hospital.db"),
		WebPort:      env("WEB_PORT", "8080"),
		GRPCPort:     envOrEmpty("GRPC_PORT", "50051"),
		SessionTTL:   ttl,
		LogLevel:     env("LOG_LEVEL", "info"),
		LogJSON:      boolEnv("LOG_JSON", false),
		CookieSecure: boolEnv("COOKIE_SECURE", false),
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "session signing secret")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "sqlite file or postgres:// url")
	fs.StringVar(&cfg.WebPort, "a", cfg.WebPort, "http port")
	fs.StringVar(&cfg.GRPCPort, "g", cfg.GRPCPort, "grpc health port, empty to disable")
	fs.DurationVar(&cfg.SessionTTL, "t", cfg.SessionTTL, "session lifetime")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.SecretKey == "" {
		return nil, ErrNoSecret
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %v", cfg.SessionTTL)
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrEmpty lets an explicitly empty variable win over the fallback.
func envOrEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

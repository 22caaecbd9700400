package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort       = 5020
	defaultSessionTTL = 24 * time.Hour
)

// Config carries everything the process needs. It is built once at startup
// and passed down explicitly; no package reads the environment after Load.
type Config struct {
	Port        int
	DatabaseDSN string
	AuthSecret  string
	SessionTTL  time.Duration
}

// Load reads an optional .env file and then the environment. The auth secret
// is mandatory; the database DSN may be empty, in which case the API runs on
// in-memory stores (useful for local development and tests).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:        defaultPort,
		DatabaseDSN: os.Getenv("IHALE_PG_DSN"),
		AuthSecret:  os.Getenv("IHALE_AUTH_SECRET"),
		SessionTTL:  defaultSessionTTL,
	}

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", raw)
		}
		cfg.Port = port
	}
	if raw := os.Getenv("IHALE_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid IHALE_SESSION_TTL %q", raw)
		}
		cfg.SessionTTL = ttl
	}
	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("IHALE_AUTH_SECRET is required")
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

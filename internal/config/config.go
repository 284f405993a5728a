package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendChannel  = "channel"
	BackendMemory   = "memory"
)

type Config struct {
	// Discord Bot
	DiscordToken string

	// Storage
	StoreBackend string
	DatabaseURL  string
	SQLitePath   string

	// Channel store (StoreBackend == "channel")
	HistoryChannel string
	RoundChannel   string

	// Roles used to build the pairing population
	ParticipantRole string
	FillerRole      string

	// Web Server
	WebBind string
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:    os.Getenv("DISCORD_TOKEN"),
		StoreBackend:    strings.ToLower(os.Getenv("STORE_BACKEND")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      getEnvDefault("SQLITE_PATH", "data/pairbot.db"),
		HistoryChannel:  getEnvDefault("HISTORY_CHANNEL", "1on1-history"),
		RoundChannel:    getEnvDefault("ROUND_CHANNEL", "1on1-pairs"),
		ParticipantRole: getEnvDefault("PARTICIPANT_ROLE", "1on1"),
		FillerRole:      os.Getenv("FILLER_ROLE"),
		WebBind:         getEnvDefault("WEB_BIND", "0.0.0.0:3000"),
	}

	if cfg.StoreBackend == "" {
		if cfg.DatabaseURL != "" {
			cfg.StoreBackend = BackendPostgres
		} else {
			cfg.StoreBackend = BackendSQLite
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendChannel, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

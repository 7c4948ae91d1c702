package main

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds the process configuration, loaded from the environment.
// A .env file in the working directory is picked up when present.
type Config struct {
	BotToken string  `env:"BOT_TOKEN,required,notEmpty"`
	OwnerIDs []int64 `env:"OWNER_IDS,required,notEmpty" envSeparator:","`

	// Health server bind port. Hosting platforms like Render inject PORT.
	Port int `env:"PORT" envDefault:"10000"`

	// Optional self-URL pinged every few minutes to keep free-tier
	// instances from idling out.
	PublicURL string `env:"PUBLIC_URL"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"poster.db"`
}

func loadConfig() (Config, error) {
	// Missing .env is fine; the environment may be set by the host.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	for _, id := range cfg.OwnerIDs {
		if id <= 0 {
			return Config{}, fmt.Errorf("invalid owner id %d in OWNER_IDS", id)
		}
	}

	return cfg, nil
}

// ownerSet converts the configured owner IDs to a lookup set.
func (c Config) ownerSet() map[int64]struct{} {
	owners := make(map[int64]struct{}, len(c.OwnerIDs))
	for _, id := range c.OwnerIDs {
		owners[id] = struct{}{}
	}
	return owners
}

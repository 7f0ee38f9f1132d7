package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server reads from the environment.
// SnapshotKey is the fixed namespace the store state is persisted
// under.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"luxe-shop.db"`
	DatabaseURL   string `env:"DATABASE_URL"`

	CatalogDriver  string `env:"CATALOG_DRIVER" envDefault:"http"`
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"https://dummyjson.com"`

	JWTSecret   string `env:"JWT_SECRET" envDefault:"dev-secret"`
	SnapshotKey string `env:"SNAPSHOT_KEY" envDefault:"luxe-shop/state"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

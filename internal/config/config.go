package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds process configuration, loaded from environment variables.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `env:"ADDR" envDefault:":8080"`
	// DBPath is the sqlite database file path.
	DBPath string `env:"DB_PATH" envDefault:"qa.db"`
	// BaseURL is the externally visible base URL used to derive share links.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	// BcryptCost is the bcrypt work factor for session password hashes.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

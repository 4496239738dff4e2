package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with FARMKEEPER_* variables. A .env file in the
// working directory is loaded first when present; variables already set in
// the process environment win over it. Unset variables keep earlier values.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}

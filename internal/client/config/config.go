package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the farmkeeper CLI.
type Config struct {
	DatabasePath   string        `env:"FARMKEEPER_DB"`
	RequestTimeout time.Duration `env:"FARMKEEPER_REQUEST_TIMEOUT"`
	LogLevel       string        `env:"FARMKEEPER_LOG_LEVEL"`
	StrictIP       bool          `env:"FARMKEEPER_STRICT_IP"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "farmkeeper.db"
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.StrictIP = false
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and the process arguments, in that order.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load is LoadConfig with explicit arguments.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBFile        string        `yaml:"dbFile"`
	APIAddr       string        `yaml:"apiAddr"`
	CORSOrigin    string        `yaml:"corsOrigin"`
	FetchLatency  time.Duration `yaml:"fetchLatency"`
	CreateLatency time.Duration `yaml:"createLatency"`
}

// Load reads configuration from the environment, optionally overlaid by a
// YAML file pointed to by PRATTLE_CONFIG.
func Load() (*Config, error) {
	cfg := &Config{
		DBFile:     getEnv("PRATTLE_DB", "prattle.db"),
		APIAddr:    getEnv("API_ADDR", ":8080"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:5173"),
	}

	var err error
	cfg.FetchLatency, err = time.ParseDuration(getEnv("FETCH_LATENCY", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_LATENCY: %w", err)
	}
	cfg.CreateLatency, err = time.ParseDuration(getEnv("CREATE_LATENCY", "200ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid CREATE_LATENCY: %w", err)
	}

	if path := os.Getenv("PRATTLE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBFile == "" {
		return fmt.Errorf("db file path is required")
	}
	if c.FetchLatency < 0 || c.CreateLatency < 0 {
		return fmt.Errorf("latency must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

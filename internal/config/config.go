package config

import "time"

// Config is the root configuration for a symsync instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Sources  SourcesConfig  `yaml:"sources"`
	Database DBConfig       `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	Health   HealthConfig   `yaml:"health"`
}

// InstanceConfig identifies this symsync instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// SourcesConfig enumerates the listing providers for a run.
type SourcesConfig struct {
	Finnhub   FinnhubConfig    `yaml:"finnhub"`
	Screeners []ScreenerConfig `yaml:"screeners"`
}

// FinnhubConfig holds Finnhub API settings.
type FinnhubConfig struct {
	Enabled      bool   `yaml:"enabled"`
	APIKey       string `yaml:"api_key"`
	Exchange     string `yaml:"exchange"`      // Exchange code for symbol listing (e.g., "US")
	ProfileLimit int    `yaml:"profile_limit"` // Max per-symbol profile lookups per run (0 = skip enrichment)
}

// ScreenerConfig points at one screener CSV export.
type ScreenerConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// DBConfig holds the Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// SyncConfig holds reconciliation run settings.
type SyncConfig struct {
	FetchConcurrency int           `yaml:"fetch_concurrency"` // Parallel source fetches
	FetchTimeout     time.Duration `yaml:"fetch_timeout"`     // Budget for the whole fetch step
	Interval         time.Duration `yaml:"interval"`          // Run interval in serve mode
	RunDate          string        `yaml:"run_date"`          // YYYY-MM-DD override; empty = today (UTC)
}

// HealthConfig holds the serve-mode health/status endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}

package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultFinnhubExchange  = "US"
	DefaultProfileLimit     = 0
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultFetchConcurrency = 4
	DefaultFetchTimeout     = 2 * time.Minute
	DefaultSyncInterval     = 24 * time.Hour
	DefaultHealthPort       = 8080
)

func (c *Config) applyDefaults() {
	// Source defaults
	if c.Sources.Finnhub.Exchange == "" {
		c.Sources.Finnhub.Exchange = DefaultFinnhubExchange
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Sync defaults
	if c.Sync.FetchConcurrency == 0 {
		c.Sync.FetchConcurrency = DefaultFetchConcurrency
	}
	if c.Sync.FetchTimeout == 0 {
		c.Sync.FetchTimeout = DefaultFetchTimeout
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = DefaultSyncInterval
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}

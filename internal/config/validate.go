package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Name == "" {
		return errors.New("database.name is required")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return errors.New("database.port must be 1-65535")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return errors.New("database.min_conns must be <= database.max_conns")
	}

	if c.Sources.Finnhub.Enabled && c.Sources.Finnhub.APIKey == "" {
		return errors.New("sources.finnhub.api_key is required when finnhub is enabled")
	}
	for i, s := range c.Sources.Screeners {
		if s.Name == "" {
			return fmt.Errorf("sources.screeners[%d].name is required", i)
		}
		if s.Path == "" {
			return fmt.Errorf("sources.screeners[%d].path is required", i)
		}
	}

	if c.Sync.FetchConcurrency < 1 {
		return errors.New("sync.fetch_concurrency must be >= 1")
	}
	if c.Sync.RunDate != "" {
		if _, err := time.Parse("2006-01-02", c.Sync.RunDate); err != nil {
			return fmt.Errorf("sync.run_date must be YYYY-MM-DD: %w", err)
		}
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return errors.New("health.port must be 1-65535")
	}

	return nil
}

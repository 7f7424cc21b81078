package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateEnrichment(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// RequireTMDB reports an actionable error when no TMDB API key is configured.
func (c *Config) RequireTMDB() error {
	if c.TMDB.APIKey != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("tmdb.api_key is required. Set TMDB_API_KEY env var or edit %s (create with 'moviedata config init')", defaultPath)
}

func (c *Config) validateTMDB() error {
	if c.TMDB.RequestDelayMS < 0 {
		return errors.New("tmdb.request_delay_ms must be >= 0")
	}
	if c.TMDB.MaxAttempts < 1 {
		return errors.New("tmdb.max_attempts must be at least 1")
	}
	if c.TMDB.BackoffBaseMS < 0 {
		return errors.New("tmdb.backoff_base_ms must be >= 0")
	}
	if c.TMDB.BackoffMaxMS < c.TMDB.BackoffBaseMS {
		return errors.New("tmdb.backoff_max_ms must be >= tmdb.backoff_base_ms")
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	if c.Enrichment.CheckpointInterval <= 0 {
		return errors.New("enrichment.checkpoint_interval must be positive")
	}
	if c.Enrichment.RowDelayMS < 0 {
		return errors.New("enrichment.row_delay_ms must be >= 0")
	}
	for _, column := range c.Enrichment.TargetColumns {
		if column == "id" {
			return errors.New("enrichment.target_columns must not include id")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

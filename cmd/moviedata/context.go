package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"moviedata/internal/config"
	"moviedata/internal/logging"
	"moviedata/internal/runstore"
	"moviedata/internal/tmdb"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger and prunes expired logs, reports
// and run history rows.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
			logging.RetentionTarget{
				Dir:     cfg.Paths.LogDir,
				Pattern: "*.log",
				Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
			},
			logging.RetentionTarget{Dir: cfg.Paths.ReportDir, Pattern: "*.json"},
		)
		c.pruneRunHistory(cfg, logger)
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// fetcher builds the TMDB client from configuration.
func (c *commandContext) fetcher(cfg *config.Config, logger *slog.Logger) (tmdb.Fetcher, error) {
	if err := cfg.RequireTMDB(); err != nil {
		return nil, err
	}
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		tmdb.WithTimeout(cfg.HTTPTimeout()),
		tmdb.WithMinInterval(cfg.RequestDelay()),
		tmdb.WithRetryMaxAttempts(cfg.TMDB.MaxAttempts),
		tmdb.WithRetryBackoff(cfg.BackoffBase(), cfg.BackoffMax()),
		tmdb.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init tmdb client: %w", err)
	}
	return client, nil
}

func (c *commandContext) openStore() (*runstore.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return runstore.Open(cfg)
}

// pruneRunHistory drops run rows older than logging.retention_days.
func (c *commandContext) pruneRunHistory(cfg *config.Config, logger *slog.Logger) {
	if cfg.Logging.RetentionDays <= 0 {
		return
	}
	store, err := c.openStore()
	if err != nil {
		logging.WarnWithContext(logger, "run history prune skipped", "run_history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "old runs remain in `moviedata runs`"),
		)
		return
	}
	defer store.Close()

	cutoff := time.Now().AddDate(0, 0, -cfg.Logging.RetentionDays)
	removed, err := store.PruneBefore(context.Background(), cutoff)
	if err != nil {
		logging.WarnWithContext(logger, "run history prune failed", "run_history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "old runs remain in `moviedata runs`"),
		)
		return
	}
	if removed > 0 {
		logger.Debug("run history pruned",
			logging.Int64("removed", removed),
			logging.Time("cutoff", cutoff),
			logging.String(logging.FieldEventType, "run_history_pruned"),
		)
	}
}

func newRunID() string {
	return uuid.NewString()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

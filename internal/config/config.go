package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	ReportDir string `toml:"report_dir"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Language       string `toml:"language"`
	RequestDelayMS int    `toml:"request_delay_ms"`
	MaxAttempts    int    `toml:"max_attempts"`
	BackoffBaseMS  int    `toml:"backoff_base_ms"`
	BackoffMaxMS   int    `toml:"backoff_max_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Enrichment controls which columns are filled and how often progress is persisted.
type Enrichment struct {
	// TargetColumns lists the columns to fill. Empty selects every column except id.
	TargetColumns      []string `toml:"target_columns"`
	CheckpointInterval int      `toml:"checkpoint_interval"`
	RowDelayMS         int      `toml:"row_delay_ms"`
}

// Validation contains configuration for the validation stage.
type Validation struct {
	Correct bool `toml:"correct"`
}

// Cleaning overrides the column plan derived from field classes.
type Cleaning struct {
	TextColumns []string `toml:"text_columns"`
	ListColumns []string `toml:"list_columns"`
	DateColumns []string `toml:"date_columns"`
	Dedupe      bool     `toml:"dedupe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for moviedata.
type Config struct {
	Paths      Paths      `toml:"paths"`
	TMDB       TMDB       `toml:"tmdb"`
	Enrichment Enrichment `toml:"enrichment"`
	Validation Validation `toml:"validation"`
	Cleaning   Cleaning   `toml:"cleaning"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("moviedata.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data, log, and report directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.ReportDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CheckpointPath returns the enrichment checkpoint location.
func (c *Config) CheckpointPath() string {
	return filepath.Join(c.Paths.DataDir, "enrichment_checkpoint.json")
}

// ProgressPath returns the enrichment progress snapshot location.
func (c *Config) ProgressPath() string {
	return filepath.Join(c.Paths.DataDir, "enrichment_progress.json")
}

// RunsDBPath returns the run history database location.
func (c *Config) RunsDBPath() string {
	return filepath.Join(c.Paths.DataDir, "runs.db")
}

// RequestDelay is the minimum interval between two TMDB requests.
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.TMDB.RequestDelayMS) * time.Millisecond
}

// RowDelay is the pause between two enriched rows.
func (c *Config) RowDelay() time.Duration {
	return time.Duration(c.Enrichment.RowDelayMS) * time.Millisecond
}

// BackoffBase is the first retry delay.
func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.TMDB.BackoffBaseMS) * time.Millisecond
}

// BackoffMax caps retry delays.
func (c *Config) BackoffMax() time.Duration {
	return time.Duration(c.TMDB.BackoffMaxMS) * time.Millisecond
}

// HTTPTimeout bounds a single TMDB request.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.TMDB.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

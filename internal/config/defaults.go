package config

const (
	defaultConfigPath         = "~/.config/moviedata/config.toml"
	defaultDataDir            = "~/.local/share/moviedata"
	defaultLogDir             = "~/.local/share/moviedata/logs"
	defaultReportDir          = "~/.local/share/moviedata/reports"
	defaultLogRetentionDays   = 30
	defaultTMDBLanguage       = "en-US"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultRequestDelayMS     = 250
	defaultMaxAttempts        = 3
	defaultBackoffBaseMS      = 1000
	defaultBackoffMaxMS       = 10000
	defaultTimeoutSeconds     = 10
	defaultCheckpointInterval = 1000
	defaultRowDelayMS         = 100
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			LogDir:    defaultLogDir,
			ReportDir: defaultReportDir,
		},
		TMDB: TMDB{
			BaseURL:        defaultTMDBBaseURL,
			Language:       defaultTMDBLanguage,
			RequestDelayMS: defaultRequestDelayMS,
			MaxAttempts:    defaultMaxAttempts,
			BackoffBaseMS:  defaultBackoffBaseMS,
			BackoffMaxMS:   defaultBackoffMaxMS,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Enrichment: Enrichment{
			CheckpointInterval: defaultCheckpointInterval,
			RowDelayMS:         defaultRowDelayMS,
		},
		Validation: Validation{
			Correct: true,
		},
		Cleaning: Cleaning{
			Dedupe: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

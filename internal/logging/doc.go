// Package logging assembles the slog loggers used by the moviedata CLI and
// pipeline stages.
//
// It owns the console and JSON handlers, the standardized attribute keys, and
// context helpers that tag log lines with the current run ID and stage. A no-op
// logger is available for tests and for library code constructed without one.
package logging

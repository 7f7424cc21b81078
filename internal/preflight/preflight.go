package preflight

import (
	"context"
	"strings"

	"moviedata/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks and, when a key is configured, the
// TMDB check. inputPath is checked as a dataset when non-empty.
func RunAll(ctx context.Context, cfg *config.Config, inputPath string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Report directory", cfg.Paths.ReportDir),
	}
	if strings.TrimSpace(inputPath) != "" {
		results = append(results, CheckDataset("Input dataset", inputPath))
	}
	results = append(results, CheckTMDB(ctx, cfg))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

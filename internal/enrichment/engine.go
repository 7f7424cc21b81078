package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"moviedata/internal/cleaning"
	"moviedata/internal/logging"
	"moviedata/internal/movie"
	"moviedata/internal/tmdb"
)

const (
	defaultCheckpointInterval = 1000
	stageName                 = "enrich"
)

// Options configures an Engine.
type Options struct {
	// TargetColumns lists the fields to fill. Empty selects every column of
	// the dataset except id.
	TargetColumns      []string
	CheckpointInterval int
	// RowDelay is slept after every row that called the API.
	RowDelay time.Duration
	// CheckpointPath enables checkpoint and resume when set.
	CheckpointPath string
	ProgressPath   string
	RunID          string
	// Restart discards an existing checkpoint instead of resuming from it.
	Restart bool
}

// Engine enriches datasets from a tmdb.Fetcher.
type Engine struct {
	source  tmdb.Fetcher
	opts    Options
	store   *CheckpointStore
	logger  *slog.Logger
	sleeper func(context.Context, time.Duration) error
	now     func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSleeper overrides how the row delay is slept (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(e *Engine) {
		if sleeper != nil {
			e.sleeper = sleeper
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Engine.
func New(source tmdb.Fetcher, opts Options, options ...Option) (*Engine, error) {
	if source == nil {
		return nil, errors.New("enrichment requires a metadata source")
	}
	if opts.CheckpointInterval <= 0 {
		opts.CheckpointInterval = defaultCheckpointInterval
	}
	e := &Engine{
		source:  source,
		opts:    opts,
		sleeper: sleepWithContext,
		now:     time.Now,
	}
	if opts.CheckpointPath != "" {
		e.store = NewCheckpointStore(opts.CheckpointPath)
	}
	for _, option := range options {
		option(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "enrichment")
	return e, nil
}

// Enrich fills missing target fields across ds and returns the enriched copy.
// ds itself is not modified. When ctx is cancelled the rows processed so far
// and the statistics are returned with ctx.Err(); the last checkpoint is kept
// so a later run resumes from it.
func (e *Engine) Enrich(ctx context.Context, ds *movie.Dataset) (*movie.Dataset, Stats, error) {
	logger := logging.WithContext(ctx, e.logger)
	segmentStart := e.now()
	stats := newStats(ds.Len(), segmentStart)

	out := &movie.Dataset{Columns: append([]string(nil), ds.Columns...)}
	if added := out.EnsureColumns(e.opts.TargetColumns...); len(added) > 0 {
		logger.Info("added target columns missing from input",
			logging.String(logging.FieldEventType, "enrichment_columns_added"),
			logging.Any("columns", added),
		)
	}
	targets := e.targets(out.Columns)

	if e.store != nil {
		if err := e.store.Lock(); err != nil {
			return nil, stats, err
		}
		defer func() {
			if err := e.store.Unlock(); err != nil {
				logging.WarnWithContext(logger, "checkpoint lock release failed", "checkpoint_unlock_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "stale lock file may remain"),
				)
			}
		}()
	}

	start, err := e.resume(ds, out, &stats, logger)
	if err != nil {
		return nil, stats, err
	}
	stats.StartedAt = segmentStart
	elapsedBefore := stats.Elapsed
	processedBefore := stats.Processed
	fingerprint := Fingerprint(ds)

	logger.Info("enrichment started",
		logging.String(logging.FieldEventType, "enrichment_started"),
		logging.Int("rows", ds.Len()),
		logging.Int("start_row", start),
		logging.Any("targets", targets),
	)

	sampler := logging.NewProgressSampler(5)
	finish := func() {
		stats.Elapsed = elapsedBefore + e.now().Sub(segmentStart)
	}

	for i := start; i < ds.Len(); i++ {
		if err := ctx.Err(); err != nil {
			finish()
			return out, stats, err
		}

		result := e.EnrichRecord(ctx, ds.Records[i], targets)
		if err := ctx.Err(); err != nil {
			// An interrupted row is redone on resume, so it is not counted.
			finish()
			return out, stats, err
		}
		stats.record(result)
		out.Records = append(out.Records, result.Record)
		e.logRow(logger, i, result)

		if sampler.ShouldLog(stats.Completion(), stageName) {
			logger.Info("enrichment progress",
				logging.String(logging.FieldEventType, "enrichment_progress"),
				logging.Int("processed", stats.Processed),
				logging.Int("total", stats.TotalRows),
				logging.Float64("percent", roundTo(stats.Completion(), 1)),
				logging.Int("enriched", stats.Enriched),
				logging.Int("api_calls", stats.APICalls),
			)
		}

		if processed := i + 1; processed%e.opts.CheckpointInterval == 0 && processed < ds.Len() {
			finish()
			if err := e.saveCheckpoint(fingerprint, processed, out, stats); err != nil {
				return out, stats, err
			}
			e.writeProgress(logger, processed, stats, stats.Processed-processedBefore, e.now().Sub(segmentStart))
		}

		if result.APICalls > 0 && e.opts.RowDelay > 0 && i+1 < ds.Len() {
			if err := e.sleeper(ctx, e.opts.RowDelay); err != nil {
				finish()
				return out, stats, err
			}
		}
	}

	finish()
	stats.FinishedAt = e.now()
	e.writeProgress(logger, ds.Len(), stats, stats.Processed-processedBefore, e.now().Sub(segmentStart))
	if e.store != nil {
		if err := e.store.Remove(); err != nil {
			logging.WarnWithContext(logger, "checkpoint removal failed", "checkpoint_remove_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete "+e.store.Path()+" or rerun with --restart"),
				logging.String(logging.FieldImpact, "next run over the same input resumes at the end"),
			)
		}
	}

	logger.Info("enrichment complete",
		logging.String(logging.FieldEventType, "enrichment_complete"),
		logging.Int("processed", stats.Processed),
		logging.Int("enriched", stats.Enriched),
		logging.Int("failed", stats.Failed),
		logging.Int("api_calls", stats.APICalls),
		logging.Float64("success_rate", roundTo(stats.SuccessRate(), 1)),
		logging.Duration("elapsed", stats.Elapsed),
	)
	return out, stats, nil
}

// EnrichRecord enriches a single record against targets. It never panics
// and never returns an error: failures are reported in the result and leave
// the record unchanged.
func (e *Engine) EnrichRecord(ctx context.Context, record movie.Record, targets []string) (result RowResult) {
	result = RowResult{Record: record.Clone(), Outcome: OutcomeSkipped}
	for _, field := range targets {
		if movie.IsMissing(field, record.Get(field)) {
			result.Missing = append(result.Missing, field)
		}
	}
	if len(result.Missing) == 0 {
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Record = record.Clone()
			result.Filled = nil
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("enrich record: panic: %v", r)
		}
	}()

	details, lookupErr := e.lookup(ctx, record, result.Missing, &result)
	if details == nil {
		if lookupErr != nil {
			result.Outcome = OutcomeFailed
			result.Err = lookupErr
		} else {
			result.Outcome = OutcomeUnmatched
		}
		return result
	}
	result.MovieID = details.ID

	enriched := record.Clone()
	for _, field := range result.Missing {
		if value, ok := movie.FromExternal(field, details); ok {
			enriched.Set(field, value)
			result.Filled = append(result.Filled, field)
		}
	}
	if result.Searched && movie.IsMissing(movie.IDColumn, record.Get(movie.IDColumn)) && details.ID > 0 {
		enriched.Set(movie.IDColumn, strconv.FormatInt(details.ID, 10))
	}
	result.Record = enriched
	if len(result.Filled) > 0 {
		result.Outcome = OutcomeEnriched
	} else {
		result.Outcome = OutcomeNoData
	}
	return result
}

// lookup fetches by id when the record has one, then falls back to a title
// search. Only the first search hit is used. The returned error is the last
// non-404 failure and matters only when no movie was obtained.
func (e *Engine) lookup(ctx context.Context, record movie.Record, missing []string, result *RowResult) (*tmdb.Movie, error) {
	appendTo := appendFor(missing)
	var lastErr error

	if id, ok := movie.ParseID(record.ID()); ok {
		result.APICalls++
		details, err := e.source.MovieDetails(ctx, id, appendTo...)
		if err == nil && details != nil {
			return details, nil
		}
		if err != nil && !errors.Is(err, tmdb.ErrNotFound) {
			lastErr = err
		}
	}

	title := record.Get("title")
	if movie.IsBlank(title) || ctx.Err() != nil {
		return nil, lastErr
	}
	result.Searched = true
	year, _ := cleaning.ReleaseYear(record.Get("release_date"))

	hit, err := e.search(ctx, title, year, result)
	if err != nil {
		lastErr = err
	}
	if hit == 0 && year > 0 && ctx.Err() == nil {
		hit, err = e.search(ctx, title, 0, result)
		if err != nil {
			lastErr = err
		}
	}
	if hit == 0 {
		return nil, lastErr
	}

	result.APICalls++
	details, err := e.source.MovieDetails(ctx, hit, appendTo...)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return nil, lastErr
		}
		return nil, err
	}
	return details, nil
}

func (e *Engine) search(ctx context.Context, title string, year int, result *RowResult) (int64, error) {
	result.APICalls++
	resp, err := e.source.SearchMovie(ctx, title, year)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if resp == nil || len(resp.Results) == 0 {
		return 0, nil
	}
	return resp.Results[0].ID, nil
}

func appendFor(missing []string) []string {
	var appendTo []string
	if movie.NeedsCredits(missing) {
		appendTo = append(appendTo, tmdb.AppendCredits)
	}
	if movie.NeedsKeywords(missing) {
		appendTo = append(appendTo, tmdb.AppendKeywords)
	}
	return appendTo
}

func (e *Engine) targets(columns []string) []string {
	if len(e.opts.TargetColumns) > 0 {
		return append([]string(nil), e.opts.TargetColumns...)
	}
	targets := make([]string, 0, len(columns))
	for _, column := range columns {
		if column != movie.IDColumn {
			targets = append(targets, column)
		}
	}
	return targets
}

// resume restores state from an existing checkpoint and returns the row to
// start from.
func (e *Engine) resume(ds, out *movie.Dataset, stats *Stats, logger *slog.Logger) (int, error) {
	if e.store == nil {
		return 0, nil
	}
	if e.opts.Restart {
		if err := e.store.Remove(); err != nil {
			return 0, err
		}
		logger.Info("existing checkpoint discarded",
			logging.String(logging.FieldEventType, "checkpoint_discarded"),
			logging.String("path", e.store.Path()),
		)
		return 0, nil
	}
	cp, found, err := e.store.Load()
	if err != nil || !found {
		return 0, err
	}
	if err := cp.Matches(ds); err != nil {
		return 0, fmt.Errorf("%w; rerun with --restart to discard %s", err, e.store.Path())
	}

	out.Records = append(out.Records[:0], cp.Rows...)
	out.EnsureColumns(cp.Columns...)
	*stats = cp.Stats
	if stats.FieldsFilled == nil {
		stats.FieldsFilled = map[string]int{}
	}
	stats.TotalRows = ds.Len()
	stats.Resumed = true
	stats.ResumedAt = cp.NextIndex

	logger.Info("resuming from checkpoint",
		logging.String(logging.FieldEventType, "checkpoint_resumed"),
		logging.Int("next_row", cp.NextIndex),
		logging.String("checkpoint_run_id", cp.RunID),
		logging.Time("saved_at", cp.SavedAt),
	)
	return cp.NextIndex, nil
}

func (e *Engine) saveCheckpoint(fingerprint string, nextIndex int, out *movie.Dataset, stats Stats) error {
	if e.store == nil {
		return nil
	}
	return e.store.Save(&Checkpoint{
		RunID:       e.opts.RunID,
		Fingerprint: fingerprint,
		TotalRows:   stats.TotalRows,
		NextIndex:   nextIndex,
		Columns:     out.Columns,
		Rows:        out.Records,
		Stats:       stats,
		SavedAt:     e.now().UTC(),
	})
}

func (e *Engine) writeProgress(logger *slog.Logger, index int, stats Stats, segmentRows int, segmentElapsed time.Duration) {
	if e.opts.ProgressPath == "" {
		return
	}
	progress := Progress{
		RunID:                e.opts.RunID,
		CurrentIndex:         index,
		TotalRows:            stats.TotalRows,
		TotalProcessed:       stats.Processed,
		TotalEnriched:        stats.Enriched,
		TotalFailed:          stats.Failed,
		APICalls:             stats.APICalls,
		Timestamp:            e.now().UTC(),
		CompletionPercentage: roundTo(stats.Completion(), 2),
	}
	if seconds := segmentElapsed.Seconds(); seconds > 0 && segmentRows > 0 {
		rate := float64(segmentRows) / seconds
		progress.RowsPerSecond = roundTo(rate, 2)
		progress.ETASeconds = roundTo(float64(stats.TotalRows-index)/rate, 0)
	}
	if err := WriteProgress(e.opts.ProgressPath, progress); err != nil {
		logging.WarnWithContext(logger, "progress snapshot write failed", "progress_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "progress file is stale; enrichment continues"),
		)
	}
}

func (e *Engine) logRow(logger *slog.Logger, index int, result RowResult) {
	switch result.Outcome {
	case OutcomeFailed:
		logging.WarnWithContext(logger, "row enrichment failed; row kept unchanged", "enrichment_row_failed",
			logging.Int(logging.FieldRow, index),
			logging.String("title", result.Record.Get("title")),
			logging.Error(result.Err),
			logging.String(logging.FieldErrorHint, "check TMDB availability and api key"),
			logging.String(logging.FieldImpact, "missing fields stay empty for this row"),
		)
	case OutcomeSkipped:
	default:
		logger.Debug("row processed",
			logging.Int(logging.FieldRow, index),
			logging.String("outcome", result.Outcome.String()),
			logging.Int64(logging.FieldMovieID, result.MovieID),
			logging.Any("filled", result.Filled),
			logging.Int("api_calls", result.APICalls),
		)
	}
}

func roundTo(value float64, places int) float64 {
	scale := 1.0
	for range places {
		scale *= 10
	}
	return float64(int64(value*scale+0.5)) / scale
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

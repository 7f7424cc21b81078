package validation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moviedata/internal/logging"
	"moviedata/internal/movie"
	"moviedata/internal/tmdb"
)

// CorrectionLimit caps correction lookups per field.
const CorrectionLimit = 10

// Engine validates datasets and, when given a metadata source, corrects them.
type Engine struct {
	source tmdb.Fetcher
	limit  int
	logger *slog.Logger
	now    func() time.Time

	cache    map[int64]*tmdb.Movie
	apiCalls int
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCorrectionLimit overrides CorrectionLimit.
func WithCorrectionLimit(limit int) Option {
	return func(e *Engine) {
		if limit >= 0 {
			e.limit = limit
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

// New constructs an Engine. A nil source disables correction.
func New(source tmdb.Fetcher, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		limit:  CorrectionLimit,
		now:    time.Now,
		cache:  map[int64]*tmdb.Movie{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "validation")
	return e
}

// Validate checks every column present in both rules and ds, in schema
// order. Corrections are written into ds. Only context cancellation is
// returned as an error; predicate and lookup failures are tallied.
func (e *Engine) Validate(ctx context.Context, ds *movie.Dataset, rules Rules) (*Report, error) {
	logger := logging.WithContext(ctx, e.logger)
	start := e.now()
	callsBefore := e.apiCalls
	report := &Report{Rows: ds.Len()}

	for _, column := range ds.Columns {
		predicate, ok := rules[column]
		if !ok || predicate == nil {
			continue
		}
		field, err := e.validateField(ctx, logger, ds, column, predicate)
		if err != nil {
			report.Elapsed = e.now().Sub(start)
			return report, err
		}
		report.Fields = append(report.Fields, field)
		report.TotalInvalid += field.Invalid
		report.TotalCorrected += field.Corrected
	}

	report.FieldsChecked = len(report.Fields)
	report.APICalls = e.apiCalls - callsBefore
	report.HealthScore = healthScore(report.Fields, report.Rows)
	report.Elapsed = e.now().Sub(start)

	logger.Info("validation complete",
		logging.String(logging.FieldEventType, "validation_complete"),
		logging.Int("fields", report.FieldsChecked),
		logging.Int("rows", report.Rows),
		logging.Int("invalid", report.TotalInvalid),
		logging.Int("corrected", report.TotalCorrected),
		logging.Float64("health_score", report.HealthScore),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

func (e *Engine) validateField(ctx context.Context, logger *slog.Logger, ds *movie.Dataset, column string, predicate Predicate) (FieldReport, error) {
	field := newFieldReport(column, ds.Len())
	var missing []int
	for i, record := range ds.Records {
		value := record.Get(column)
		valid, err := check(predicate, value)
		if err != nil {
			field.PredicateErrors++
			if field.PredicateErrors == 1 {
				logging.WarnWithContext(logger, "predicate failed; value counted invalid", "validation_predicate_panic",
					logging.String(logging.FieldField, column),
					logging.Int(logging.FieldRow, i),
					logging.Error(err),
					logging.String(logging.FieldImpact, "values that crash the predicate are reported invalid"),
				)
			}
		}
		if !valid {
			field.InvalidRows = append(field.InvalidRows, i)
			continue
		}
		field.Valid++
		if movie.IsMissing(column, value) {
			missing = append(missing, i)
		}
	}
	field.Invalid = field.Total - field.Valid
	if field.Invalid > 0 {
		logger.Info("invalid values found",
			logging.String(logging.FieldEventType, "validation_invalid_values"),
			logging.String(logging.FieldField, column),
			logging.Int("invalid", field.Invalid),
		)
	}

	if e.source != nil && movie.IsEnrichable(column) {
		candidates := append(append([]int(nil), field.InvalidRows...), missing...)
		if err := e.correct(ctx, logger, ds, column, predicate, candidates, &field); err != nil {
			return field, err
		}
	}

	if field.Corrected > 0 {
		for _, record := range ds.Records {
			if valid, _ := check(predicate, record.Get(column)); valid {
				field.ValidAfter++
			}
		}
	} else {
		field.ValidAfter = field.Valid
	}
	field.finish()
	return field, nil
}

// correct looks up rows (invalid first, then valid-but-missing) until the
// limit is reached.
func (e *Engine) correct(ctx context.Context, logger *slog.Logger, ds *movie.Dataset, column string, predicate Predicate, rows []int, field *FieldReport) error {
	for _, row := range rows {
		if field.Attempted >= e.limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		record := ds.Records[row]
		id, ok := movie.ParseID(record.ID())
		if !ok {
			continue
		}
		field.Attempted++

		details, err := e.fetch(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			field.CorrectionErrors++
			logging.WarnWithContext(logger, "correction lookup failed", "validation_correction_failed",
				logging.String(logging.FieldField, column),
				logging.Int(logging.FieldRow, row),
				logging.Int64(logging.FieldMovieID, id),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check TMDB availability and api key"),
				logging.String(logging.FieldImpact, "value left uncorrected"),
			)
			continue
		}
		if details == nil {
			continue
		}
		candidate, ok := movie.FromExternal(column, details)
		if !ok {
			continue
		}
		if valid, _ := check(predicate, candidate); !valid {
			continue
		}
		current := record.Get(column)
		if chosen := movie.Choose(column, current, candidate); chosen != current {
			record.Set(column, chosen)
			field.Corrected++
			logger.Debug("value corrected",
				logging.String(logging.FieldField, column),
				logging.Int(logging.FieldRow, row),
				logging.Int64(logging.FieldMovieID, id),
				logging.String("from", current),
				logging.String("to", chosen),
			)
		}
	}
	return nil
}

// fetch returns the cached details for id, calling the source once per id.
// A not-found id is cached as nil.
func (e *Engine) fetch(ctx context.Context, id int64) (*tmdb.Movie, error) {
	if details, ok := e.cache[id]; ok {
		return details, nil
	}
	e.apiCalls++
	details, err := e.source.MovieDetails(ctx, id, tmdb.AppendCredits, tmdb.AppendKeywords)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			e.cache[id] = nil
			return nil, nil
		}
		return nil, err
	}
	e.cache[id] = details
	return details, nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"moviedata/internal/cleaning"
	"moviedata/internal/config"
	"moviedata/internal/enrichment"
	"moviedata/internal/fileutil"
	"moviedata/internal/logging"
	"moviedata/internal/movie"
	"moviedata/internal/runstore"
	"moviedata/internal/validation"
)

// pipeline runs stages for one run id and records each of them.
type pipeline struct {
	ctx    *commandContext
	cfg    *config.Config
	logger *slog.Logger
	store  *runstore.Store
	out    io.Writer
	runID  string
	input  string
	output string
}

type stageReport struct {
	RunID       string    `json:"run_id"`
	Stage       string    `json:"stage"`
	Status      string    `json:"status"`
	Input       string    `json:"input"`
	Output      string    `json:"output,omitempty"`
	Error       string    `json:"error,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Result      any       `json:"result"`
}

type stageOutcome struct {
	stage       runstore.Stage
	rows        int
	metricName  string
	metricValue float64
	result      any
	started     time.Time
	err         error
}

func (c *commandContext) newPipeline(cmd *cobra.Command, input, output string) (*pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	p := &pipeline{
		ctx:    c,
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		runID:  newRunID(),
		input:  input,
		output: output,
	}
	store, err := c.openStore()
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "run_history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the run database under paths.data_dir if the schema changed"),
			logging.String(logging.FieldImpact, "this run will not appear in `moviedata runs`"),
		)
	} else {
		p.store = store
	}
	return p, nil
}

func (p *pipeline) close() {
	if p.store != nil {
		_ = p.store.Close()
	}
}

func (p *pipeline) stageContext(ctx context.Context, stage runstore.Stage) context.Context {
	return logging.WithStage(logging.WithRunID(ctx, p.runID), string(stage))
}

func (p *pipeline) load() (*movie.Dataset, error) {
	ds, err := movie.LoadCSV(p.input)
	if err != nil {
		return nil, fmt.Errorf("load input: %w", err)
	}
	p.logger.Info("dataset loaded",
		logging.String(logging.FieldRunID, p.runID),
		logging.String("path", p.input),
		logging.Int("rows", ds.Len()),
		logging.Int("columns", len(ds.Columns)),
	)
	return ds, nil
}

func (p *pipeline) save(ds *movie.Dataset) error {
	if p.output == "" {
		return nil
	}
	if err := movie.SaveCSV(p.output, ds); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (p *pipeline) clean(ctx context.Context, ds *movie.Dataset) (cleaning.Stats, error) {
	ctx = p.stageContext(ctx, runstore.StageClean)
	started := time.Now()
	plan := cleaning.PlanFor(ds.Columns).Override(p.cfg.Cleaning.TextColumns, p.cfg.Cleaning.ListColumns, p.cfg.Cleaning.DateColumns)
	plan.Dedupe = p.cfg.Cleaning.Dedupe

	stats, err := cleaning.New(plan, logging.WithContext(ctx, p.logger)).Clean(ctx, ds)
	fmt.Fprintln(p.out, renderCleaningSummary(p.out, stats))
	p.record(ctx, stageOutcome{
		stage:       runstore.StageClean,
		rows:        stats.Rows,
		metricName:  "fixes",
		metricValue: float64(cleaningFixes(stats)),
		result:      stats,
		started:     started,
		err:         err,
	})
	return stats, err
}

type enrichOptions struct {
	restart bool
	columns []string
}

func (p *pipeline) enrich(ctx context.Context, ds *movie.Dataset, opts enrichOptions) (*movie.Dataset, enrichment.Stats, error) {
	ctx = p.stageContext(ctx, runstore.StageEnrich)
	started := time.Now()
	source, err := p.ctx.fetcher(p.cfg, p.logger)
	if err != nil {
		return nil, enrichment.Stats{}, err
	}

	targets := p.cfg.Enrichment.TargetColumns
	if len(opts.columns) > 0 {
		targets = opts.columns
	}
	engine, err := enrichment.New(source, enrichment.Options{
		TargetColumns:      targets,
		CheckpointInterval: p.cfg.Enrichment.CheckpointInterval,
		RowDelay:           p.cfg.RowDelay(),
		CheckpointPath:     p.cfg.CheckpointPath(),
		ProgressPath:       p.cfg.ProgressPath(),
		RunID:              p.runID,
		Restart:            opts.restart,
	}, enrichment.WithLogger(p.logger))
	if err != nil {
		return nil, enrichment.Stats{}, err
	}

	out, stats, err := engine.Enrich(ctx, ds)
	fmt.Fprintln(p.out, renderEnrichmentSummary(p.out, stats))
	p.record(ctx, stageOutcome{
		stage:       runstore.StageEnrich,
		rows:        stats.Processed,
		metricName:  "success_rate",
		metricValue: stats.SuccessRate(),
		result:      stats,
		started:     started,
		err:         err,
	})
	return out, stats, err
}

func (p *pipeline) validate(ctx context.Context, ds *movie.Dataset, correct bool) (*validation.Report, error) {
	ctx = p.stageContext(ctx, runstore.StageValidate)
	started := time.Now()
	var opts []validation.Option
	opts = append(opts, validation.WithLogger(p.logger))

	var engine *validation.Engine
	if correct {
		source, err := p.ctx.fetcher(p.cfg, p.logger)
		if err != nil {
			return nil, err
		}
		engine = validation.New(source, opts...)
	} else {
		engine = validation.New(nil, opts...)
	}

	report, err := engine.Validate(ctx, ds, validation.DefaultRules(ds.Columns))
	fmt.Fprintln(p.out, renderValidationSummary(p.out, report))
	p.record(ctx, stageOutcome{
		stage:       runstore.StageValidate,
		rows:        report.Rows,
		metricName:  "health_score",
		metricValue: report.HealthScore,
		result:      report,
		started:     started,
		err:         err,
	})
	return report, err
}

// record writes the stage report file and appends the run history row.
// Failures here are logged and never mask the stage result.
func (p *pipeline) record(ctx context.Context, outcome stageOutcome) {
	logger := logging.WithContext(ctx, p.logger)
	status := runstore.StatusSucceeded
	errMsg := ""
	switch {
	case errors.Is(outcome.err, context.Canceled):
		status = runstore.StatusInterrupted
		errMsg = outcome.err.Error()
	case outcome.err != nil:
		status = runstore.StatusFailed
		errMsg = outcome.err.Error()
	}

	report := stageReport{
		RunID:       p.runID,
		Stage:       string(outcome.stage),
		Status:      string(status),
		Input:       p.input,
		Output:      p.output,
		Error:       errMsg,
		GeneratedAt: time.Now().UTC(),
		Result:      outcome.result,
	}
	reportPath := filepath.Join(p.cfg.Paths.ReportDir, fmt.Sprintf("%s-%s.json", p.runID, outcome.stage))
	if err := fileutil.WriteJSON(reportPath, report); err != nil {
		logging.WarnWithContext(logger, "report write failed", "report_write_failed",
			logging.String("path", reportPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "summary is only available in the terminal output"),
		)
		reportPath = ""
	}

	if p.store == nil {
		return
	}
	payload, err := json.Marshal(outcome.result)
	if err != nil {
		payload = nil
	}
	run := &runstore.Run{
		RunID:        p.runID,
		Stage:        outcome.stage,
		Status:       status,
		InputPath:    p.input,
		OutputPath:   p.output,
		ReportPath:   reportPath,
		Rows:         outcome.rows,
		MetricName:   outcome.metricName,
		MetricValue:  outcome.metricValue,
		ErrorMessage: errMsg,
		ReportJSON:   string(payload),
		StartedAt:    outcome.started,
		FinishedAt:   time.Now(),
	}
	// Recording must survive a cancelled stage context.
	if err := p.store.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "run history write failed", "run_history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this stage will not appear in `moviedata runs`"),
		)
	}
}

func cleaningFixes(stats cleaning.Stats) int {
	return stats.EncodingFixes + stats.HTMLFixes + stats.WhitespaceFixes + stats.ControlCharsRemoved +
		stats.NullsCleared + stats.ListsNormalized + stats.DatesStandardized
}

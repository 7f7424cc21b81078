package runstore

import (
	"database/sql"
	"errors"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          int64
		runID       string
		stage       string
		status      string
		inputPath   sql.NullString
		outputPath  sql.NullString
		reportPath  sql.NullString
		rows        int
		metricName  sql.NullString
		metricValue sql.NullFloat64
		errorMsg    sql.NullString
		reportJSON  sql.NullString
		startedRaw  string
		finishedRaw string
	)
	if err := scanner.Scan(
		&id,
		&runID,
		&stage,
		&status,
		&inputPath,
		&outputPath,
		&reportPath,
		&rows,
		&metricName,
		&metricValue,
		&errorMsg,
		&reportJSON,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		RunID:        runID,
		Stage:        Stage(stage),
		Status:       Status(status),
		InputPath:    inputPath.String,
		OutputPath:   outputPath.String,
		ReportPath:   reportPath.String,
		Rows:         rows,
		MetricName:   metricName.String,
		MetricValue:  metricValue.Float64,
		ErrorMessage: errorMsg.String,
		ReportJSON:   reportJSON.String,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

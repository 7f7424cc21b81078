package validation

import (
	"time"

	"moviedata/internal/movie"
)

// FieldReport summarizes one validated column.
type FieldReport struct {
	Field        string  `json:"field"`
	Class        string  `json:"class"`
	Total        int     `json:"total"`
	Valid        int     `json:"valid"`
	Invalid      int     `json:"invalid"`
	PercentValid float64 `json:"percent_valid"`
	// InvalidRows holds the zero-based row indices that failed before correction.
	InvalidRows []int `json:"invalid_rows,omitempty"`
	// PredicateErrors counts values whose predicate panicked.
	PredicateErrors int `json:"predicate_errors,omitempty"`

	Attempted         int     `json:"correction_attempted"`
	Corrected         int     `json:"corrected"`
	CorrectionErrors  int     `json:"correction_errors,omitempty"`
	ValidAfter        int     `json:"valid_after"`
	Improvement       int     `json:"improvement"`
	PercentValidAfter float64 `json:"percent_valid_after"`
}

// Report is the outcome of one validation pass.
type Report struct {
	Rows           int           `json:"rows"`
	Fields         []FieldReport `json:"fields"`
	FieldsChecked  int           `json:"fields_checked"`
	TotalInvalid   int           `json:"total_invalid"`
	TotalCorrected int           `json:"total_corrected"`
	APICalls       int           `json:"api_calls"`
	// HealthScore is the percentage of valid values across every validated
	// field after correction, always within [0, 100].
	HealthScore float64       `json:"health_score"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// Field returns the report for name.
func (r *Report) Field(name string) (FieldReport, bool) {
	for _, f := range r.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldReport{}, false
}

func newFieldReport(field string, total int) FieldReport {
	return FieldReport{Field: field, Class: movie.ClassOf(field).String(), Total: total}
}

func (f *FieldReport) finish() {
	f.Improvement = f.ValidAfter - f.Valid
	f.PercentValid = percent(f.Valid, f.Total)
	f.PercentValidAfter = percent(f.ValidAfter, f.Total)
}

func healthScore(fields []FieldReport, rows int) float64 {
	if len(fields) == 0 || rows == 0 {
		return 100
	}
	valid := 0
	for _, f := range fields {
		valid += f.ValidAfter
	}
	return clamp(percent(valid, len(fields)*rows))
}

func percent(part, whole int) float64 {
	if whole <= 0 {
		return 100
	}
	return float64(part) / float64(whole) * 100
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"moviedata/internal/cleaning"
	"moviedata/internal/enrichment"
	"moviedata/internal/validation"
)

var metricAligns = []columnAlignment{alignLeft, alignRight}

func renderCleaningSummary(out io.Writer, stats cleaning.Stats) string {
	rows := [][]string{
		{"Rows", strconv.Itoa(stats.Rows)},
		{"Encoding fixes", strconv.Itoa(stats.EncodingFixes)},
		{"HTML entity fixes", strconv.Itoa(stats.HTMLFixes)},
		{"Whitespace fixes", strconv.Itoa(stats.WhitespaceFixes)},
		{"Control chars removed", strconv.Itoa(stats.ControlCharsRemoved)},
		{"Null-like values cleared", strconv.Itoa(stats.NullsCleared)},
		{"Lists normalized", strconv.Itoa(stats.ListsNormalized)},
		{"Dates standardized", strconv.Itoa(stats.DatesStandardized)},
		{"Dates rejected", strconv.Itoa(stats.DatesRejected)},
		{"Duplicates removed", strconv.Itoa(stats.DuplicatesRemoved)},
		{"Elapsed", formatElapsed(stats.Elapsed)},
	}
	return "Cleaning summary\n" + renderTable(out, []string{"Metric", "Value"}, rows, metricAligns)
}

func renderEnrichmentSummary(out io.Writer, stats enrichment.Stats) string {
	rows := [][]string{
		{"Rows", strconv.Itoa(stats.TotalRows)},
		{"Processed", strconv.Itoa(stats.Processed)},
		{"Enriched", strconv.Itoa(stats.Enriched)},
		{"Skipped (complete)", strconv.Itoa(stats.Skipped)},
		{"Found, no data", strconv.Itoa(stats.NoData)},
		{"Unmatched", strconv.Itoa(stats.Unmatched)},
		{"Failed", strconv.Itoa(stats.Failed)},
		{"API calls", strconv.Itoa(stats.APICalls)},
		{"Success rate", formatPercent(stats.SuccessRate())},
		{"Elapsed", formatElapsed(stats.Elapsed)},
	}
	if stats.Resumed {
		rows = append(rows, []string{"Resumed at row", strconv.Itoa(stats.ResumedAt)})
	}
	var b strings.Builder
	b.WriteString("Enrichment summary\n")
	b.WriteString(renderTable(out, []string{"Metric", "Value"}, rows, metricAligns))

	if len(stats.FieldsFilled) > 0 {
		fields := make([]string, 0, len(stats.FieldsFilled))
		for field := range stats.FieldsFilled {
			fields = append(fields, field)
		}
		slices.Sort(fields)
		filled := make([][]string, 0, len(fields))
		for _, field := range fields {
			filled = append(filled, []string{field, strconv.Itoa(stats.FieldsFilled[field])})
		}
		b.WriteString("\n")
		b.WriteString(renderTable(out, []string{"Field", "Filled"}, filled, metricAligns))
	}
	return b.String()
}

func renderValidationSummary(out io.Writer, report *validation.Report) string {
	if report == nil {
		return "Validation summary unavailable"
	}
	rows := make([][]string, 0, len(report.Fields))
	for _, f := range report.Fields {
		rows = append(rows, []string{
			f.Field,
			strconv.Itoa(f.Valid),
			strconv.Itoa(f.Invalid),
			formatPercent(f.PercentValid),
			strconv.Itoa(f.Corrected),
			formatPercent(f.PercentValidAfter),
		})
	}
	var b strings.Builder
	b.WriteString("Validation summary\n")
	b.WriteString(renderTable(out,
		[]string{"Field", "Valid", "Invalid", "Valid %", "Corrected", "Valid % after"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(&b, "\nHealth score: %s (%d rows, %d fields, %d corrected, %d API calls)",
		formatPercent(report.HealthScore), report.Rows, report.FieldsChecked, report.TotalCorrected, report.APICalls)
	return b.String()
}

func formatPercent(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64) + "%"
}

func formatElapsed(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}

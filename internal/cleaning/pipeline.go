package cleaning

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"moviedata/internal/logging"
	"moviedata/internal/movie"
)

// Plan names the columns each normalization applies to.
type Plan struct {
	TextColumns []string `json:"text_columns"`
	ListColumns []string `json:"list_columns"`
	// NameColumns are lists of people, cleaned without title casing.
	NameColumns []string `json:"name_columns"`
	DateColumns []string `json:"date_columns"`
	Dedupe      bool     `json:"dedupe"`
}

// PlanFor derives a plan from the field classes of columns.
func PlanFor(columns []string) Plan {
	plan := Plan{Dedupe: true}
	for _, column := range columns {
		switch movie.ClassOf(column) {
		case movie.ClassTitle, movie.ClassText:
			plan.TextColumns = append(plan.TextColumns, column)
		case movie.ClassList:
			plan.ListColumns = append(plan.ListColumns, column)
		case movie.ClassPeople:
			plan.NameColumns = append(plan.NameColumns, column)
		case movie.ClassDate:
			plan.DateColumns = append(plan.DateColumns, column)
		}
	}
	return plan
}

// Override replaces the derived column sets with any non-empty explicit set.
func (p Plan) Override(text, list, date []string) Plan {
	if len(text) > 0 {
		p.TextColumns = slices.Clone(text)
	}
	if len(list) > 0 {
		p.ListColumns = slices.Clone(list)
		p.NameColumns = slices.DeleteFunc(p.NameColumns, func(c string) bool { return slices.Contains(list, c) })
	}
	if len(date) > 0 {
		p.DateColumns = slices.Clone(date)
	}
	return p
}

// Stats counts the repairs one Clean call applied.
type Stats struct {
	Rows                int           `json:"rows"`
	EncodingFixes       int           `json:"encoding_fixes"`
	HTMLFixes           int           `json:"html_fixes"`
	WhitespaceFixes     int           `json:"whitespace_fixes"`
	ControlCharsRemoved int           `json:"control_chars_removed"`
	NullsCleared        int           `json:"nulls_cleared"`
	ListsNormalized     int           `json:"lists_normalized"`
	DatesStandardized   int           `json:"dates_standardized"`
	DatesRejected       int           `json:"dates_rejected"`
	DuplicatesRemoved   int           `json:"duplicates_removed"`
	Elapsed             time.Duration `json:"elapsed_ns"`
}

// Cleaner applies a Plan to datasets.
type Cleaner struct {
	plan   Plan
	logger *slog.Logger
}

// New constructs a Cleaner.
func New(plan Plan, logger *slog.Logger) *Cleaner {
	return &Cleaner{plan: plan, logger: logging.NewComponentLogger(logger, "cleaning")}
}

// Plan returns the plan the cleaner applies.
func (c *Cleaner) Plan() Plan {
	return c.plan
}

// Clean normalizes ds in place and returns what changed. Columns named in the
// plan but absent from the schema are skipped.
func (c *Cleaner) Clean(ctx context.Context, ds *movie.Dataset) (Stats, error) {
	start := time.Now()
	logger := logging.WithContext(ctx, c.logger)
	var stats Stats

	text := present(ds, c.plan.TextColumns)
	lists := present(ds, c.plan.ListColumns)
	names := present(ds, c.plan.NameColumns)
	dates := present(ds, c.plan.DateColumns)

	for _, record := range ds.Records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		for _, column := range text {
			c.cleanTextField(record, column, &stats)
		}
		for _, column := range lists {
			cleanListField(record, column, CleanList, &stats)
		}
		for _, column := range names {
			cleanListField(record, column, CleanNames, &stats)
		}
		for _, column := range dates {
			cleanDateField(record, column, &stats)
		}
	}

	if c.plan.Dedupe {
		stats.DuplicatesRemoved = ds.Dedupe()
	}
	stats.Rows = ds.Len()
	stats.Elapsed = time.Since(start)

	logger.Info("dataset cleaned",
		logging.String(logging.FieldEventType, "cleaning_complete"),
		logging.Int("rows", stats.Rows),
		logging.Int("encoding_fixes", stats.EncodingFixes),
		logging.Int("html_fixes", stats.HTMLFixes),
		logging.Int("whitespace_fixes", stats.WhitespaceFixes),
		logging.Int("dates_rejected", stats.DatesRejected),
		logging.Int("duplicates_removed", stats.DuplicatesRemoved),
	)
	if stats.DatesRejected > 0 {
		logging.WarnWithContext(logger, "unparsable dates cleared", "cleaning_dates_rejected",
			logging.Int("count", stats.DatesRejected),
			logging.String(logging.FieldErrorHint, "dates must match a supported layout such as YYYY-MM-DD or DD/MM/YYYY"),
			logging.String(logging.FieldImpact, "release year unknown for affected rows during enrichment"),
		)
	}
	return stats, nil
}

func (c *Cleaner) cleanTextField(record movie.Record, column string, stats *Stats) {
	original := record.Get(column)
	cleaned, fixes := cleanText(original)
	if fixes.encoding {
		stats.EncodingFixes++
	}
	if fixes.html {
		stats.HTMLFixes++
	}
	if fixes.control {
		stats.ControlCharsRemoved++
	}
	if fixes.whitespace {
		stats.WhitespaceFixes++
	}
	if cleaned == "" && original != "" && !fixes.whitespace {
		stats.NullsCleared++
	}
	record.Set(column, cleaned)
}

func cleanListField(record movie.Record, column string, clean func(string) []string, stats *Stats) {
	original := record.Get(column)
	cleaned := movie.JoinList(clean(original))
	if cleaned != original {
		stats.ListsNormalized++
	}
	record.Set(column, cleaned)
}

func cleanDateField(record movie.Record, column string, stats *Stats) {
	original := record.Get(column)
	if movie.IsBlank(original) {
		record.Set(column, "")
		return
	}
	standardized, ok := StandardizeDate(original)
	if !ok {
		stats.DatesRejected++
		record.Set(column, "")
		return
	}
	if standardized != original {
		stats.DatesStandardized++
	}
	record.Set(column, standardized)
}

func present(ds *movie.Dataset, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, column := range columns {
		if ds.HasColumn(column) {
			out = append(out, column)
		}
	}
	return out
}

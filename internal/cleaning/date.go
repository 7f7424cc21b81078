package cleaning

import (
	"strings"
	"time"
)

// CanonicalDateLayout is the only date form the validation stage accepts.
const CanonicalDateLayout = "2006-01-02"

// dateLayouts are tried in priority order; day-first wins over month-first
// for ambiguous slash dates.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2006/1/2",
	"2006",
	"2006-1",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// yearLayouts is dateLayouts without bare year-month.
var yearLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2006/1/2",
	"2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// StandardizeDate converts value to YYYY-MM-DD. A bare year maps to January 1
// and a bare year-month to the first of the month. ok is false when no layout
// matches.
func StandardizeDate(value string) (string, bool) {
	t, ok := parseDate(value, dateLayouts)
	if !ok {
		return "", false
	}
	return t.Format(CanonicalDateLayout), true
}

// ReleaseYear extracts the year from a release date in any accepted layout.
func ReleaseYear(value string) (int, bool) {
	t, ok := parseDate(value, yearLayouts)
	if !ok {
		return 0, false
	}
	return t.Year(), true
}

func parseDate(value string, layouts []string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

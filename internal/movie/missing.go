package movie

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var missingSentinels = map[string]struct{}{
	"nan":     {},
	"null":    {},
	"none":    {},
	"unknown": {},
	"n/a":     {},
}

// IsMissing reports whether value carries no usable data for field. Numeric
// classes treat zero and negative values as missing; list classes treat
// empty or unparsable lists as missing. It never fails.
func IsMissing(field, value string) bool {
	switch capabilities[ClassOf(field)].missing {
	case missingNumber:
		n, ok := ParseNumber(value)
		return !ok || n <= 0
	case missingList:
		items, ok := ParseList(value)
		return !ok || len(items) == 0
	default:
		return IsBlank(value)
	}
}

// IsBlank reports whether value is empty after trimming or a null-like
// sentinel such as "nan" or "N/A".
func IsBlank(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return true
	}
	_, sentinel := missingSentinels[strings.ToLower(trimmed)]
	return sentinel
}

// ParseNumber coerces value to a finite float.
func ParseNumber(value string) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	n, err := cast.ToFloat64E(trimmed)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// ParseID parses a positive movie ID. Integral floats such as "27205.0",
// which spreadsheet exports produce, are accepted.
func ParseID(value string) (int64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return id, id > 0
	}
	n, ok := ParseNumber(trimmed)
	if !ok || n != math.Trunc(n) || n <= 0 || n > math.MaxInt64/2 {
		return 0, false
	}
	return int64(n), true
}

// FormatNumber renders n without a trailing ".0" for integral values.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

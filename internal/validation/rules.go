package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"moviedata/internal/movie"
)

// Predicate reports whether a raw cell value is valid.
type Predicate func(value string) bool

// Rules maps column names to predicates.
type Rules map[string]Predicate

const canonicalDate = "2006-01-02"

// DefaultRules returns the class predicate for every column that has one.
// Text and people columns carry no default rule.
func DefaultRules(columns []string) Rules {
	rules := Rules{}
	for _, column := range columns {
		if predicate := PredicateFor(movie.ClassOf(column)); predicate != nil {
			rules[column] = predicate
		}
	}
	return rules
}

// PredicateFor returns the default predicate of class, or nil when the class
// is not validated. Blank values pass every numeric and date predicate:
// emptiness is a missingness concern.
func PredicateFor(class movie.FieldClass) Predicate {
	switch class {
	case movie.ClassIdentity:
		return ValidID
	case movie.ClassTitle:
		return ValidTitle
	case movie.ClassDate:
		return ValidDate
	case movie.ClassRating:
		return numberWithin(0, 10)
	case movie.ClassRuntime:
		return numberWithin(1, 600)
	case movie.ClassFinancial, movie.ClassCount, movie.ClassPopularity:
		return numberAtLeast(0)
	case movie.ClassList:
		return func(string) bool { return true }
	default:
		return nil
	}
}

// ValidID accepts positive integer ids.
func ValidID(value string) bool {
	_, ok := movie.ParseID(value)
	return ok
}

// ValidTitle accepts titles with at least one letter or digit.
func ValidTitle(value string) bool {
	return strings.ContainsFunc(value, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// ValidDate accepts blank values and canonical YYYY-MM-DD dates only.
func ValidDate(value string) bool {
	trimmed := strings.TrimSpace(value)
	if movie.IsBlank(trimmed) {
		return true
	}
	parsed, err := time.Parse(canonicalDate, trimmed)
	return err == nil && parsed.Format(canonicalDate) == trimmed
}

func numberWithin(lo, hi float64) Predicate {
	return func(value string) bool {
		if movie.IsBlank(value) {
			return true
		}
		n, ok := movie.ParseNumber(value)
		return ok && n >= lo && n <= hi
	}
}

func numberAtLeast(lo float64) Predicate {
	return func(value string) bool {
		if movie.IsBlank(value) {
			return true
		}
		n, ok := movie.ParseNumber(value)
		return ok && n >= lo
	}
}

// check runs predicate and converts a panic into an invalid result.
func check(predicate Predicate, value string) (valid bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			valid = false
			err = fmt.Errorf("predicate panic: %v", r)
		}
	}()
	return predicate(value), nil
}

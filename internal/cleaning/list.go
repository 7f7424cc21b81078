package cleaning

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"moviedata/internal/movie"
)

// CleanList parses a stored list value, cleans and title-cases each element,
// and drops repeats keeping first-seen order. Blank and null-like input
// yields an empty list. Malformed bracketed lists fall back to a comma split.
func CleanList(value string) []string {
	return cleanList(value, true)
}

// CleanNames is CleanList without title casing, for people columns where
// casing such as "Guillermo del Toro" is significant.
func CleanNames(value string) []string {
	return cleanList(value, false)
}

// CleanListValues cleans already separated elements. Elements that differ
// only in case are repeats; the first-seen form is kept.
func CleanListValues(values []string) []string {
	return dedupeItems(values, true)
}

func cleanList(value string, titleCase bool) []string {
	if CleanText(value) == "" {
		return nil
	}
	items, ok := movie.ParseList(value)
	if !ok {
		items = strings.Split(strings.Trim(strings.TrimSpace(value), "[]"), ",")
	}
	if titleCase {
		return CleanListValues(items)
	}
	return dedupeItems(items, false)
}

// dedupeItems cleans each element, optionally title-cases it, and drops
// elements whose case-folded form was already seen.
func dedupeItems(values []string, titleCase bool) []string {
	// NoLower keeps acronyms such as "TV Movie" intact.
	caser := cases.Title(language.Und, cases.NoLower)
	folder := cases.Fold()
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		item := strings.Trim(CleanText(value), `"'`)
		if item == "" {
			continue
		}
		if titleCase {
			item = caser.String(item)
		}
		key := folder.String(item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Package validation checks dataset columns against per-field predicates,
// optionally corrects invalid values from TMDB, and summarizes the result as
// a health score.
//
// Predicates are plain functions over the raw cell text. DefaultRules derives
// one predicate per column from its field class; callers may supply their
// own Rules instead. A panicking predicate marks the value invalid and never
// aborts the scan.
//
// Correction is bounded: at most CorrectionLimit records are looked up per
// field, each movie id is fetched once per run, and a fetched value replaces
// the current one only when it passes the predicate and wins arbitration.
package validation

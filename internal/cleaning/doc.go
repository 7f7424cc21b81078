// Package cleaning normalizes text, list, and date columns before enrichment.
//
// CleanText, CleanList, and StandardizeDate are pure and idempotent. Cleaner
// applies them to a dataset according to a Plan and tallies what it changed.
package cleaning

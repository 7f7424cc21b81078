// Package preflight provides readiness checks for the filesystem paths and
// the TMDB credentials moviedata depends on.
//
// `moviedata check` runs RunAll and prints every result; enrich and run call
// CheckTMDB before touching the dataset so a bad key fails in seconds rather
// than after thousands of failed rows.
package preflight

// Package main hosts the moviedata CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, builds the logger and the
// TMDB client, and drives the cleaning, enrichment and validation stages
// over CSV files. Every stage run prints a summary table, writes a JSON
// report under the report directory and appends a row to the run history.
//
// Keep this package lean: stage semantics live in the internal packages and
// the commands here only wire them to files, flags and output.
package main

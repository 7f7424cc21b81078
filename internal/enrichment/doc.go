// Package enrichment fills missing dataset fields from TMDB.
//
// The Engine walks records strictly in order. For each record it computes the
// missing target fields, fetches the movie by id (falling back to a title
// search with and then without the release year), and copies only the missing
// fields from the external record. Every CheckpointInterval rows it persists a
// versioned checkpoint guarded by a file lock, so an interrupted run resumes
// from the last boundary with its statistics intact.
package enrichment

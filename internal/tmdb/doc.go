// Package tmdb provides the TMDB API client used to enrich and correct movie
// records.
//
// It exposes movie detail lookups (optionally embedding credits and keywords
// through append_to_response) and title search with an optional release-year
// filter. Every request from one Client passes through a minimum-interval
// throttle and a bounded retry loop with exponential backoff, so callers see
// either a decoded payload or a single wrapped error once the attempt budget is
// spent. Options let tests swap the HTTP client and the sleeper without touching
// production code.
package tmdb

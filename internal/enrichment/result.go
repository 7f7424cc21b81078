package enrichment

import "moviedata/internal/movie"

// Outcome classifies what happened to one record.
type Outcome int

const (
	// OutcomeSkipped means no target field was missing; no API call was made.
	OutcomeSkipped Outcome = iota
	// OutcomeEnriched means at least one missing field was written.
	OutcomeEnriched
	// OutcomeNoData means the movie was found but held nothing for the missing fields.
	OutcomeNoData
	// OutcomeUnmatched means neither the id nor the title search found a movie.
	OutcomeUnmatched
	// OutcomeFailed means a lookup failed after retries; the row is kept unchanged.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeEnriched:
		return "enriched"
	case OutcomeNoData:
		return "no_data"
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RowResult is the explicit per-record result of EnrichRecord.
type RowResult struct {
	Record  movie.Record
	Outcome Outcome
	// Missing lists target fields judged missing before the lookup.
	Missing []string
	// Filled lists fields actually written.
	Filled   []string
	MovieID  int64
	APICalls int
	// Searched reports whether the title search ran.
	Searched bool
	Err      error
}

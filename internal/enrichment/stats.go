package enrichment

import "time"

// Stats accumulates counters for one enrichment run, including rows restored
// from a checkpoint.
type Stats struct {
	TotalRows    int            `json:"total_rows"`
	Processed    int            `json:"processed"`
	Enriched     int            `json:"enriched"`
	Skipped      int            `json:"skipped"`
	NoData       int            `json:"no_data"`
	Unmatched    int            `json:"unmatched"`
	Failed       int            `json:"failed"`
	APICalls     int            `json:"api_calls"`
	Searches     int            `json:"searches"`
	FieldsFilled map[string]int `json:"fields_filled"`
	Resumed      bool           `json:"resumed"`
	ResumedAt    int            `json:"resumed_at_row"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at,omitzero"`
	// Elapsed sums wall time across every segment of a resumed run.
	Elapsed time.Duration `json:"elapsed_ns"`
}

func newStats(totalRows int, now time.Time) Stats {
	return Stats{TotalRows: totalRows, FieldsFilled: map[string]int{}, StartedAt: now}
}

func (s *Stats) record(result RowResult) {
	s.Processed++
	s.APICalls += result.APICalls
	if result.Searched {
		s.Searches++
	}
	switch result.Outcome {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeEnriched:
		s.Enriched++
	case OutcomeNoData:
		s.NoData++
	case OutcomeUnmatched:
		s.Unmatched++
	case OutcomeFailed:
		s.Failed++
	}
	if s.FieldsFilled == nil {
		s.FieldsFilled = map[string]int{}
	}
	for _, field := range result.Filled {
		s.FieldsFilled[field]++
	}
}

// SuccessRate is the percentage of processed rows that were enriched.
func (s Stats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Enriched) / float64(s.Processed) * 100
}

// Completion is the percentage of rows processed.
func (s Stats) Completion() float64 {
	if s.TotalRows == 0 {
		return 100
	}
	return float64(s.Processed) / float64(s.TotalRows) * 100
}

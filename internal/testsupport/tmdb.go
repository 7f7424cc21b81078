package testsupport

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"moviedata/internal/tmdb"
)

// FakeTMDB is an in-memory tmdb.Fetcher. Movies are served by id and
// searches match titles case-insensitively, honouring the year filter when a
// release date is set.
type FakeTMDB struct {
	mu     sync.Mutex
	movies map[int64]tmdb.Movie

	// DetailsErr, when set, is returned for details lookups of matching ids.
	DetailsErr map[int64]error
	// SearchErr is returned by every search when set.
	SearchErr error
	// BeforeCall runs ahead of every request; it may cancel a context or panic.
	BeforeCall func(op string, calls int)

	detailCalls int
	searchCalls int
	appends     [][]string
	queries     []SearchCall
}

// SearchCall records one SearchMovie invocation.
type SearchCall struct {
	Query string
	Year  int
}

var _ tmdb.Fetcher = (*FakeTMDB)(nil)

// NewFakeTMDB seeds the fake with movies.
func NewFakeTMDB(movies ...tmdb.Movie) *FakeTMDB {
	f := &FakeTMDB{movies: map[int64]tmdb.Movie{}, DetailsErr: map[int64]error{}}
	for _, m := range movies {
		f.movies[m.ID] = m
	}
	return f
}

// Add registers another movie.
func (f *FakeTMDB) Add(m tmdb.Movie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movies[m.ID] = m
}

func (f *FakeTMDB) MovieDetails(ctx context.Context, movieID int64, appendTo ...string) (*tmdb.Movie, error) {
	f.mu.Lock()
	f.detailCalls++
	f.appends = append(f.appends, append([]string(nil), appendTo...))
	calls := f.detailCalls + f.searchCalls
	hook := f.BeforeCall
	f.mu.Unlock()
	if hook != nil {
		hook("details", calls)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DetailsErr[movieID]; err != nil {
		return nil, err
	}
	m, ok := f.movies[movieID]
	if !ok {
		return nil, tmdb.ErrNotFound
	}
	withCredits, withKeywords := false, false
	for _, extra := range appendTo {
		switch extra {
		case tmdb.AppendCredits:
			withCredits = true
		case tmdb.AppendKeywords:
			withKeywords = true
		}
	}
	if !withCredits {
		m.Credits = nil
	}
	if !withKeywords {
		m.Keywords = nil
	}
	return &m, nil
}

func (f *FakeTMDB) SearchMovie(ctx context.Context, query string, year int) (*tmdb.SearchResponse, error) {
	f.mu.Lock()
	f.searchCalls++
	f.queries = append(f.queries, SearchCall{Query: query, Year: year})
	calls := f.detailCalls + f.searchCalls
	hook := f.BeforeCall
	f.mu.Unlock()
	if hook != nil {
		hook("search", calls)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	resp := &tmdb.SearchResponse{Page: 1}
	for _, m := range f.movies {
		if !strings.EqualFold(strings.TrimSpace(m.Title), strings.TrimSpace(query)) {
			continue
		}
		if year > 0 && !strings.HasPrefix(m.ReleaseDate, strconv.Itoa(year)) {
			continue
		}
		resp.Results = append(resp.Results, tmdb.SearchResult{ID: m.ID, Title: m.Title, ReleaseDate: m.ReleaseDate})
	}
	slices.SortFunc(resp.Results, func(a, b tmdb.SearchResult) int { return cmp.Compare(a.ID, b.ID) })
	resp.TotalResults = len(resp.Results)
	return resp, nil
}

// Calls returns the number of details and search requests served.
func (f *FakeTMDB) Calls() (details, searches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls, f.searchCalls
}

// Searches returns every search made so far.
func (f *FakeTMDB) Searches() []SearchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SearchCall(nil), f.queries...)
}

// Appends returns the append_to_response lists of each details call.
func (f *FakeTMDB) Appends() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.appends...)
}

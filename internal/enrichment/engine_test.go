package enrichment_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"moviedata/internal/enrichment"
	"moviedata/internal/fileutil"
	"moviedata/internal/movie"
	"moviedata/internal/testsupport"
	"moviedata/internal/tmdb"
)

func inception() tmdb.Movie {
	return tmdb.Movie{
		ID:          27205,
		Title:       "Inception",
		ReleaseDate: "2010-07-15",
		Budget:      160000000,
		Revenue:     825532764,
		Runtime:     148,
		VoteAverage: 8.4,
		VoteCount:   35000,
		Genres:      []tmdb.Named{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
		Credits: &tmdb.Credits{
			Cast: []tmdb.CastMember{{Name: "Leonardo DiCaprio"}, {Name: "Joseph Gordon-Levitt"}},
			Crew: []tmdb.CrewMember{{Name: "Christopher Nolan", Job: "Director", Department: "Directing"}},
		},
		Keywords: &tmdb.Keywords{Keywords: []tmdb.Named{{ID: 1, Name: "dream"}}},
	}
}

func newEngine(t *testing.T, source tmdb.Fetcher, opts enrichment.Options, extra ...enrichment.Option) *enrichment.Engine {
	t.Helper()
	engine, err := enrichment.New(source, opts, extra...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return engine
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := enrichment.New(nil, enrichment.Options{}); err == nil {
		t.Fatal("expected error without a metadata source")
	}
}

func TestEnrichFillsFromTitleSearch(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	ds := testsupport.Dataset(t, "id,title,release_date,budget\n,Inception,2010-07-16,\n")
	engine := newEngine(t, fake, enrichment.Options{TargetColumns: []string{"budget"}})

	out, stats, err := engine.Enrich(context.Background(), ds)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	got := out.Records[0]
	if got.Get("budget") != "160000000" {
		t.Fatalf("budget = %q, want 160000000", got.Get("budget"))
	}
	if got.ID() != "27205" {
		t.Fatalf("id = %q, want 27205", got.ID())
	}
	if stats.Enriched != 1 || stats.Processed != 1 || stats.Searches != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.FieldsFilled["budget"] != 1 {
		t.Fatalf("fields filled = %v", stats.FieldsFilled)
	}
	if ds.Records[0].Get("budget") != "" {
		t.Fatal("input dataset must not be modified")
	}
	if searches := fake.Searches(); len(searches) != 1 || searches[0].Year != 2010 {
		t.Fatalf("unexpected searches: %+v", searches)
	}
}

func TestEnrichSkipsCompleteRows(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	ds := testsupport.Dataset(t, "id,title,budget,runtime\n27205,Inception,160000000,148\n")
	var sleeps []time.Duration
	engine := newEngine(t, fake, enrichment.Options{RowDelay: time.Second},
		enrichment.WithSleeper(func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		}))

	out, stats, err := engine.Enrich(context.Background(), ds)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if !out.Records[0].Equal(ds.Records[0], ds.Columns) {
		t.Fatalf("skipped row changed: %v", out.Records[0])
	}
	details, searches := fake.Calls()
	if details+searches != 0 || stats.APICalls != 0 {
		t.Fatalf("expected no api calls, got details=%d searches=%d", details, searches)
	}
	if stats.Skipped != 1 || len(sleeps) != 0 {
		t.Fatalf("stats=%+v sleeps=%v", stats, sleeps)
	}
}

func TestEnrichRecordOutcomes(t *testing.T) {
	boom := errors.New("tmdb: 502 bad gateway")
	tests := []struct {
		name      string
		record    movie.Record
		targets   []string
		setup     func(*testsupport.FakeTMDB)
		outcome   enrichment.Outcome
		apiCalls  int
		wantField string
		wantValue string
	}{
		{
			name:      "fetch by id",
			record:    movie.Record{"id": "27205", "title": "Inception", "runtime": ""},
			targets:   []string{"runtime"},
			outcome:   enrichment.OutcomeEnriched,
			apiCalls:  1,
			wantField: "runtime",
			wantValue: "148",
		},
		{
			name:      "id miss falls back to search",
			record:    movie.Record{"id": "1", "title": "inception", "vote_average": "0"},
			targets:   []string{"vote_average"},
			outcome:   enrichment.OutcomeEnriched,
			apiCalls:  3,
			wantField: "vote_average",
			wantValue: "8.4",
		},
		{
			name:     "transport failure keeps row",
			record:   movie.Record{"id": "27205", "budget": ""},
			targets:  []string{"budget"},
			setup:    func(f *testsupport.FakeTMDB) { f.DetailsErr[27205] = boom },
			outcome:  enrichment.OutcomeFailed,
			apiCalls: 1,
		},
		{
			name:     "unmatched",
			record:   movie.Record{"id": "999", "title": "No Such Film", "budget": ""},
			targets:  []string{"budget"},
			outcome:  enrichment.OutcomeUnmatched,
			apiCalls: 2,
		},
		{
			name:     "found without data",
			record:   movie.Record{"id": "27205", "tagline": ""},
			targets:  []string{"tagline"},
			outcome:  enrichment.OutcomeNoData,
			apiCalls: 1,
		},
		{
			name:     "no id and no title",
			record:   movie.Record{"budget": ""},
			targets:  []string{"budget"},
			outcome:  enrichment.OutcomeUnmatched,
			apiCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testsupport.NewFakeTMDB(inception())
			if tt.setup != nil {
				tt.setup(fake)
			}
			engine := newEngine(t, fake, enrichment.Options{})
			before := tt.record.Clone()

			result := engine.EnrichRecord(context.Background(), tt.record, tt.targets)
			if result.Outcome != tt.outcome {
				t.Fatalf("outcome = %s, want %s (err=%v)", result.Outcome, tt.outcome, result.Err)
			}
			if result.APICalls != tt.apiCalls {
				t.Fatalf("api calls = %d, want %d", result.APICalls, tt.apiCalls)
			}
			if tt.wantField != "" && result.Record.Get(tt.wantField) != tt.wantValue {
				t.Fatalf("%s = %q, want %q", tt.wantField, result.Record.Get(tt.wantField), tt.wantValue)
			}
			if tt.outcome != enrichment.OutcomeEnriched && !result.Record.Equal(before, slices.Collect(maps.Keys(before))) {
				t.Fatalf("record changed on %s: %v", tt.outcome, result.Record)
			}
			if tt.outcome == enrichment.OutcomeFailed && !errors.Is(result.Err, boom) {
				t.Fatalf("expected transport error, got %v", result.Err)
			}
			if !tt.record.Equal(before, slices.Collect(maps.Keys(before))) {
				t.Fatal("input record mutated")
			}
		})
	}
}

func TestEnrichRecordRetriesSearchWithoutYear(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	engine := newEngine(t, fake, enrichment.Options{})
	record := movie.Record{"title": "Inception", "release_date": "2011-01-01", "runtime": ""}

	result := engine.EnrichRecord(context.Background(), record, []string{"runtime"})
	if result.Outcome != enrichment.OutcomeEnriched {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	searches := fake.Searches()
	want := []testsupport.SearchCall{{Query: "Inception", Year: 2011}, {Query: "Inception", Year: 0}}
	if !slices.Equal(searches, want) {
		t.Fatalf("searches = %+v, want %+v", searches, want)
	}
	if result.Record.ID() != "27205" {
		t.Fatalf("expected id adopted from search, got %q", result.Record.ID())
	}
}

func TestEnrichRecordRequestsSubResources(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	engine := newEngine(t, fake, enrichment.Options{})
	record := movie.Record{"id": "27205", "director": "", "cast": "", "keywords": "[]"}

	result := engine.EnrichRecord(context.Background(), record, []string{"director", "cast", "keywords"})
	if result.Outcome != enrichment.OutcomeEnriched || len(result.Filled) != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := result.Record.Get("director"); got != "Christopher Nolan" {
		t.Fatalf("director = %q", got)
	}
	if got := result.Record.Get("cast"); got != "Leonardo DiCaprio, Joseph Gordon-Levitt" {
		t.Fatalf("cast = %q", got)
	}
	appends := fake.Appends()
	if len(appends) != 1 || !slices.Equal(appends[0], []string{tmdb.AppendCredits, tmdb.AppendKeywords}) {
		t.Fatalf("append_to_response = %v", appends)
	}
}

func TestEnrichRecordRecoversPanic(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	fake.BeforeCall = func(string, int) { panic("decoder exploded") }
	engine := newEngine(t, fake, enrichment.Options{})
	record := movie.Record{"id": "27205", "budget": ""}

	result := engine.EnrichRecord(context.Background(), record, []string{"budget"})
	if result.Outcome != enrichment.OutcomeFailed {
		t.Fatalf("outcome = %s", result.Outcome)
	}
	if result.Err == nil || !strings.Contains(result.Err.Error(), "panic") {
		t.Fatalf("expected panic error, got %v", result.Err)
	}
	if result.Record.Get("budget") != "" {
		t.Fatal("record should be unchanged after panic")
	}
}

func TestEnrichAddsMissingTargetColumns(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	ds := testsupport.Dataset(t, "id,title\n27205,Inception\n")
	engine := newEngine(t, fake, enrichment.Options{TargetColumns: []string{"runtime", "genres"}})

	out, _, err := engine.Enrich(context.Background(), ds)
	if err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	if !slices.Equal(out.Columns, []string{"id", "title", "runtime", "genres"}) {
		t.Fatalf("columns = %v", out.Columns)
	}
	if got := out.Records[0].Get("genres"); got != "Action, Science Fiction" {
		t.Fatalf("genres = %q", got)
	}
	if len(ds.Columns) != 2 {
		t.Fatal("input columns must not change")
	}
}

func TestEnrichRowDelayOnlyAfterAPICalls(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	ds := testsupport.Dataset(t, "id,budget\n27205,\n27205,1\n27205,\n")
	var sleeps []time.Duration
	engine := newEngine(t, fake, enrichment.Options{TargetColumns: []string{"budget"}, RowDelay: 50 * time.Millisecond},
		enrichment.WithSleeper(func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		}))

	if _, _, err := engine.Enrich(context.Background(), ds); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
	// Row 0 called the API, row 1 was skipped, row 2 is last.
	if len(sleeps) != 1 || sleeps[0] != 50*time.Millisecond {
		t.Fatalf("sleeps = %v", sleeps)
	}
}

func TestEnrichHonoursCancelledContext(t *testing.T) {
	fake := testsupport.NewFakeTMDB(inception())
	ds := testsupport.Dataset(t, "id,budget\n27205,\n")
	engine := newEngine(t, fake, enrichment.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := engine.Enrich(ctx, ds)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if details, searches := fake.Calls(); details+searches != 0 {
		t.Fatal("no calls expected after cancellation")
	}
}

func bulkDataset(rows int) (*movie.Dataset, []tmdb.Movie) {
	ds := &movie.Dataset{Columns: []string{"id", "title", "budget"}}
	movies := make([]tmdb.Movie, 0, rows)
	for i := 1; i <= rows; i++ {
		id := strconv.Itoa(i)
		ds.Records = append(ds.Records, movie.Record{"id": id, "title": "Film " + id, "budget": ""})
		movies = append(movies, tmdb.Movie{ID: int64(i), Title: "Film " + id, Budget: int64(i) * 1000})
	}
	return ds, movies
}

func TestEnrichResumesFromCheckpoint(t *testing.T) {
	ds, movies := bulkDataset(2500)
	opts := func(dir string) enrichment.Options {
		return enrichment.Options{
			TargetColumns:      []string{"budget"},
			CheckpointInterval: 1000,
			CheckpointPath:     filepath.Join(dir, "checkpoint.json"),
			ProgressPath:       filepath.Join(dir, "progress.json"),
			RunID:              "run-1",
		}
	}

	baseline := newEngine(t, testsupport.NewFakeTMDB(movies...), opts(t.TempDir()))
	want, wantStats, err := baseline.Enrich(context.Background(), ds)
	if err != nil {
		t.Fatalf("baseline Enrich: %v", err)
	}

	dir := t.TempDir()
	fake := testsupport.NewFakeTMDB(movies...)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake.BeforeCall = func(_ string, calls int) {
		if calls == 1201 {
			cancel()
		}
	}
	interrupted := newEngine(t, fake, opts(dir))
	partial, partialStats, err := interrupted.Enrich(ctx, ds)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if partial.Len() != 1200 || partialStats.Processed != 1200 {
		t.Fatalf("partial rows=%d processed=%d, want 1200", partial.Len(), partialStats.Processed)
	}

	var progress enrichment.Progress
	if found, err := fileutil.ReadJSON(filepath.Join(dir, "progress.json"), &progress); err != nil || !found {
		t.Fatalf("progress snapshot missing: found=%v err=%v", found, err)
	}
	if progress.CurrentIndex != 1000 || progress.TotalRows != 2500 || progress.CompletionPercentage != 40 {
		t.Fatalf("unexpected progress: %+v", progress)
	}

	fake.BeforeCall = nil
	resumed := newEngine(t, fake, opts(dir))
	got, stats, err := resumed.Enrich(context.Background(), ds)
	if err != nil {
		t.Fatalf("resumed Enrich: %v", err)
	}
	if !stats.Resumed || stats.ResumedAt != 1000 {
		t.Fatalf("expected resume at row 1000, got %+v", stats)
	}
	if stats.Processed != wantStats.Processed || stats.Enriched != wantStats.Enriched ||
		stats.APICalls != wantStats.APICalls || stats.FieldsFilled["budget"] != wantStats.FieldsFilled["budget"] {
		t.Fatalf("resumed stats %+v differ from uninterrupted %+v", stats, wantStats)
	}
	if got.Len() != want.Len() {
		t.Fatalf("rows = %d, want %d", got.Len(), want.Len())
	}
	for i := range want.Records {
		if !got.Records[i].Equal(want.Records[i], want.Columns) {
			t.Fatalf("row %d differs: %v vs %v", i, got.Records[i], want.Records[i])
		}
	}
	if _, found, err := enrichment.NewCheckpointStore(filepath.Join(dir, "checkpoint.json")).Load(); err != nil || found {
		t.Fatalf("checkpoint should be removed after completion: found=%v err=%v", found, err)
	}
}

func TestEnrichRejectsForeignCheckpoint(t *testing.T) {
	ds, movies := bulkDataset(3)
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	store := enrichment.NewCheckpointStore(path)
	if err := store.Save(&enrichment.Checkpoint{Fingerprint: "other", TotalRows: 3, NextIndex: 0}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	engine := newEngine(t, testsupport.NewFakeTMDB(movies...), enrichment.Options{CheckpointPath: path})
	if _, _, err := engine.Enrich(context.Background(), ds); !errors.Is(err, enrichment.ErrCheckpointMismatch) {
		t.Fatalf("expected ErrCheckpointMismatch, got %v", err)
	}

	restart := newEngine(t, testsupport.NewFakeTMDB(movies...), enrichment.Options{CheckpointPath: path, Restart: true})
	_, stats, err := restart.Enrich(context.Background(), ds)
	if err != nil {
		t.Fatalf("restart Enrich: %v", err)
	}
	if stats.Resumed || stats.Enriched != 3 {
		t.Fatalf("unexpected restart stats: %+v", stats)
	}
}

func TestEnrichRejectsCheckpointVersion(t *testing.T) {
	ds, movies := bulkDataset(2)
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	testsupport.WriteFile(t, path, `{"version": 99, "total_rows": 2}`)

	engine := newEngine(t, testsupport.NewFakeTMDB(movies...), enrichment.Options{CheckpointPath: path})
	if _, _, err := engine.Enrich(context.Background(), ds); !errors.Is(err, enrichment.ErrCheckpointVersion) {
		t.Fatalf("expected ErrCheckpointVersion, got %v", err)
	}
}

func TestEnrichRefusesLockedCheckpoint(t *testing.T) {
	ds, movies := bulkDataset(1)
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	holder := flock.New(path + ".lock")
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-lock: locked=%v err=%v", locked, err)
	}
	t.Cleanup(func() { _ = holder.Unlock() })

	engine := newEngine(t, testsupport.NewFakeTMDB(movies...), enrichment.Options{CheckpointPath: path})
	if _, _, err := engine.Enrich(context.Background(), ds); !errors.Is(err, enrichment.ErrCheckpointLocked) {
		t.Fatalf("expected ErrCheckpointLocked, got %v", err)
	}
}

func ExampleOutcome_String() {
	fmt.Println(enrichment.OutcomeEnriched, enrichment.OutcomeUnmatched)
	// Output: enriched unmatched
}

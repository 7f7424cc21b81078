package cleaning_test

import (
	"context"
	"strings"
	"testing"

	"moviedata/internal/cleaning"
	"moviedata/internal/movie"
)

func TestPlanForDerivesColumnsFromClasses(t *testing.T) {
	plan := cleaning.PlanFor([]string{"id", "title", "overview", "genres", "cast", "release_date", "budget"})
	if strings.Join(plan.TextColumns, ",") != "title,overview" {
		t.Fatalf("text columns = %v", plan.TextColumns)
	}
	if strings.Join(plan.ListColumns, ",") != "genres" {
		t.Fatalf("list columns = %v", plan.ListColumns)
	}
	if strings.Join(plan.NameColumns, ",") != "cast" {
		t.Fatalf("name columns = %v", plan.NameColumns)
	}
	if strings.Join(plan.DateColumns, ",") != "release_date" {
		t.Fatalf("date columns = %v", plan.DateColumns)
	}
	if !plan.Dedupe {
		t.Fatal("expected dedupe by default")
	}

	overridden := plan.Override(nil, []string{"genres", "cast"}, nil)
	if strings.Join(overridden.ListColumns, ",") != "genres,cast" || len(overridden.NameColumns) != 0 {
		t.Fatalf("unexpected override %+v", overridden)
	}
	if strings.Join(overridden.TextColumns, ",") != "title,overview" {
		t.Fatalf("text columns should be kept, got %v", overridden.TextColumns)
	}
}

func TestCleanerCleansDatasetAndCountsFixes(t *testing.T) {
	ds := &movie.Dataset{
		Columns: []string{"id", "title", "genres", "director", "release_date"},
		Records: []movie.Record{
			{"id": "1", "title": "  AmÃ©lie ", "genres": "comedy, romance, comedy", "director": "Jean-Pierre Jeunet", "release_date": "25/04/2001"},
			{"id": "2", "title": "Tom &amp; Jerry", "genres": "['Animation']", "director": "", "release_date": "someday"},
			{"id": "1", "title": "Duplicate", "genres": "", "director": "", "release_date": "2001"},
			{"id": "3", "title": "nan", "genres": "Drama", "director": "", "release_date": ""},
		},
	}
	cleaner := cleaning.New(cleaning.PlanFor(ds.Columns), nil)
	stats, err := cleaner.Clean(context.Background(), ds)
	if err != nil {
		t.Fatalf("Clean returned error: %v", err)
	}

	if ds.Len() != 3 || stats.DuplicatesRemoved != 1 || stats.Rows != 3 {
		t.Fatalf("unexpected dedupe result: len=%d stats=%+v", ds.Len(), stats)
	}
	first := ds.Records[0]
	if first.Get("title") != "Amélie" || first.Get("genres") != "Comedy, Romance" || first.Get("release_date") != "2001-04-25" {
		t.Fatalf("unexpected first record %v", first)
	}
	second := ds.Records[1]
	if second.Get("title") != "Tom & Jerry" || second.Get("genres") != "Animation" || second.Get("release_date") != "" {
		t.Fatalf("unexpected second record %v", second)
	}
	if ds.Records[2].Get("title") != "" {
		t.Fatalf("null-like title should be cleared, got %q", ds.Records[2].Get("title"))
	}

	if stats.EncodingFixes != 1 || stats.HTMLFixes != 1 {
		t.Fatalf("unexpected text fix counts %+v", stats)
	}
	if stats.WhitespaceFixes < 1 {
		t.Fatalf("expected whitespace fix, got %+v", stats)
	}
	if stats.DatesRejected != 1 || stats.DatesStandardized < 1 {
		t.Fatalf("unexpected date counts %+v", stats)
	}
	if stats.NullsCleared != 1 {
		t.Fatalf("NullsCleared = %d, want 1", stats.NullsCleared)
	}
	if stats.ListsNormalized < 2 {
		t.Fatalf("ListsNormalized = %d, want at least 2", stats.ListsNormalized)
	}
}

func TestCleanerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ds := &movie.Dataset{Columns: []string{"id"}, Records: []movie.Record{{"id": "1"}}}
	if _, err := cleaning.New(cleaning.Plan{}, nil).Clean(ctx, ds); err == nil {
		t.Fatal("expected context error")
	}
}

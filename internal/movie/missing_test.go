package movie_test

import (
	"testing"

	"moviedata/internal/movie"
)

func TestIsMissing(t *testing.T) {
	tests := []struct {
		field string
		value string
		want  bool
	}{
		{"title", "", true},
		{"title", "   ", true},
		{"title", "NaN", true},
		{"title", "Unknown", true},
		{"director", "n/a", true},
		{"title", "Inception", false},
		{"budget", "0", true},
		{"budget", "-5", true},
		{"budget", "abc", true},
		{"budget", "NaN", true},
		{"budget", "Inf", true},
		{"budget", "160000000", false},
		{"budget", "1.6e8", false},
		{"runtime", "148.0", false},
		{"vote_average", "0", true},
		{"vote_average", "0.0", true},
		{"vote_average", "7.8", false},
		{"imdb_rating", "11", false},
		{"vote_count", "", true},
		{"genres", "", true},
		{"genres", "[]", true},
		{"genres", "[ ]", true},
		{"genres", "False", true},
		{"genres", "['Action'", true},
		{"genres", "['Action', 'Drama']", false},
		{"genres", "Action, Drama", false},
		{"release_date", "", true},
		{"release_date", "2010-07-16", false},
		{"some_custom_column", "null", true},
		{"some_custom_column", "value", false},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			got := movie.IsMissing(tt.field, tt.value)
			if got != tt.want {
				t.Fatalf("IsMissing(%q, %q) = %v, want %v", tt.field, tt.value, got, tt.want)
			}
			if again := movie.IsMissing(tt.field, tt.value); again != got {
				t.Fatal("IsMissing is not deterministic")
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"27205", 27205, true},
		{" 27205 ", 27205, true},
		{"27205.0", 27205, true},
		{"27205.5", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"", 0, false},
		{"tt1375666", 0, false},
	}
	for _, tt := range tests {
		got, ok := movie.ParseID(tt.value)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseID(%q) = %d, %v; want %d, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestClassOf(t *testing.T) {
	tests := map[string]movie.FieldClass{
		"id":            movie.ClassIdentity,
		" Vote_Average": movie.ClassRating,
		"vote_count":    movie.ClassCount,
		"budget":        movie.ClassFinancial,
		"genres":        movie.ClassList,
		"cast":          movie.ClassPeople,
		"release_date":  movie.ClassDate,
		"mystery":       movie.ClassOther,
	}
	for field, want := range tests {
		if got := movie.ClassOf(field); got != want {
			t.Errorf("ClassOf(%q) = %v, want %v", field, got, want)
		}
	}
	if !movie.ClassRuntime.Numeric() || movie.ClassList.Numeric() {
		t.Error("unexpected Numeric classification")
	}
	if !movie.ClassPeople.MultiValued() || movie.ClassTitle.MultiValued() {
		t.Error("unexpected MultiValued classification")
	}
}

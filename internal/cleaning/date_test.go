package cleaning_test

import (
	"testing"

	"moviedata/internal/cleaning"
)

func TestStandardizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2021", "2021-01-01", true},
		{"15/03/2020", "2020-03-15", true},
		{"03/15/2020", "2020-03-15", true},
		{"04/05/2020", "2020-05-04", true},
		{"2020/3/9", "2020-03-09", true},
		{"2010-07-16", "2010-07-16", true},
		{"2010-7-6", "2010-07-06", true},
		{"1999-12", "1999-12-01", true},
		{"2010-07-16 00:00:00", "2010-07-16", true},
		{" 2010-07-16 ", "2010-07-16", true},
		{"garbage", "", false},
		{"2020-13-45", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := cleaning.StandardizeDate(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Fatalf("StandardizeDate(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestReleaseYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"2010-07-16", 2010, true},
		{"16/07/2010", 2010, true},
		{"1994", 1994, true},
		{"1999-12", 0, false},
		{"soon", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := cleaning.ReleaseYear(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ReleaseYear(%q) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

package movie_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"moviedata/internal/movie"
)

func TestReadCSVNormalizesHeaderAndPadsRows(t *testing.T) {
	input := "\ufeff id , title,genres\n1,Heat,\"Action, Crime\"\n2,Short\n"
	ds, err := movie.ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	if strings.Join(ds.Columns, "|") != "id|title|genres" {
		t.Fatalf("columns = %q", ds.Columns)
	}
	if ds.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ds.Len())
	}
	if ds.Records[0].Get("genres") != "Action, Crime" {
		t.Fatalf("quoted list not preserved: %q", ds.Records[0].Get("genres"))
	}
	if v, ok := ds.Records[1]["genres"]; !ok || v != "" {
		t.Fatalf("short row should be padded, got %q ok=%v", v, ok)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "missing id", input: "title,budget\nHeat,1\n", want: movie.ErrMissingIDColumn},
		{name: "duplicate column", input: "id,title,title\n"},
		{name: "empty input", input: ""},
		{name: "unnamed column", input: "id,,title\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := movie.ReadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSaveAndLoadCSVRoundTrip(t *testing.T) {
	ds := &movie.Dataset{
		Columns: []string{"id", "title", "overview"},
		Records: []movie.Record{
			{"id": "1", "title": "Heat", "overview": "A \"heist\", with commas"},
			{"id": "2", "title": "Alien"},
		},
	}
	path := filepath.Join(t.TempDir(), "out", "movies.csv")
	if err := movie.SaveCSV(path, ds); err != nil {
		t.Fatalf("SaveCSV returned error: %v", err)
	}
	loaded, err := movie.LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV returned error: %v", err)
	}
	for i := range ds.Records {
		if !loaded.Records[i].Equal(ds.Records[i], ds.Columns) {
			t.Fatalf("row %d mismatch: %v vs %v", i, loaded.Records[i], ds.Records[i])
		}
	}
}

func TestWriteCSVUsesSchemaOrder(t *testing.T) {
	ds := &movie.Dataset{
		Columns: []string{"title", "id"},
		Records: []movie.Record{{"id": "7", "title": "Se7en", "ignored": "x"}},
	}
	var buf bytes.Buffer
	if err := movie.WriteCSV(&buf, ds); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	if got := buf.String(); got != "title,id\nSe7en,7\n" {
		t.Fatalf("unexpected csv %q", got)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := movie.LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

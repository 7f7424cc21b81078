package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"moviedata/internal/movie"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Dataset parses CSV text into a dataset, failing the test on error.
func Dataset(t testing.TB, csvText string) *movie.Dataset {
	t.Helper()

	ds, err := movie.ReadCSV(strings.NewReader(csvText))
	if err != nil {
		t.Fatalf("parse csv fixture: %v", err)
	}
	return ds
}

// LoadDataset reads a CSV file written by the code under test.
func LoadDataset(t testing.TB, path string) *movie.Dataset {
	t.Helper()

	ds, err := movie.LoadCSV(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return ds
}

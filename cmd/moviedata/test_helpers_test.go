package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"moviedata/internal/config"
	"moviedata/internal/testsupport"
	"moviedata/internal/tmdb"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	tmdb       *httptest.Server
}

var testMovies = []tmdb.Movie{
	{
		ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15",
		Budget: 160000000, Revenue: 825532764, Runtime: 148, VoteAverage: 8.4, VoteCount: 35000,
		Genres: []tmdb.Named{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	},
	{
		ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30",
		Budget: 63000000, Runtime: 136, VoteAverage: 8.2, VoteCount: 25000,
	},
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	srv := newTMDBServer(t, "test")
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithTMDBBaseURL(srv.URL)}, opts...)...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("TMDB_API_KEY", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base, tmdb: srv}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// newTMDBServer serves the configuration, details and search endpoints for
// testMovies and rejects any other api key with 401.
func newTMDBServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	byID := map[int64]tmdb.Movie{}
	for _, m := range testMovies {
		byID[m.ID] = m
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("api_key") != apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/configuration":
			_, _ = w.Write([]byte(`{"images":{}}`))
		case r.URL.Path == "/search/movie":
			resp := tmdb.SearchResponse{Page: 1}
			year := query.Get("primary_release_year")
			for _, m := range testMovies {
				if !strings.EqualFold(m.Title, query.Get("query")) {
					continue
				}
				if year != "" && !strings.HasPrefix(m.ReleaseDate, year) {
					continue
				}
				resp.Results = append(resp.Results, tmdb.SearchResult{ID: m.ID, Title: m.Title, ReleaseDate: m.ReleaseDate})
			}
			resp.TotalResults = len(resp.Results)
			_ = json.NewEncoder(w).Encode(resp)
		case strings.HasPrefix(r.URL.Path, "/movie/"):
			id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/movie/"), 10, 64)
			m, ok := byID[id]
			if err != nil || !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(m)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"moviedata/internal/config"
	"moviedata/internal/movie"
	"moviedata/internal/tmdb"
)

const tmdbCheckTimeout = 10 * time.Second

// CheckTMDB verifies that the API is reachable and the key is accepted.
// It makes a single unretried request.
func CheckTMDB(ctx context.Context, cfg *config.Config, opts ...tmdb.Option) Result {
	const name = "TMDB"

	if strings.TrimSpace(cfg.TMDB.APIKey) == "" {
		return Result{Name: name, Detail: "missing api key (set tmdb.api_key or TMDB_API_KEY)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, tmdbCheckTimeout)
	defer cancel()

	base := []tmdb.Option{
		tmdb.WithTimeout(tmdbCheckTimeout),
		tmdb.WithMinInterval(0),
		tmdb.WithRetryMaxAttempts(1),
	}
	client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language, append(base, opts...)...)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if err := client.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeTMDBError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable, key accepted"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDataset verifies that path is a readable CSV with an id column.
func CheckDataset(name, path string) Result {
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	ds, err := movie.LoadCSV(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d rows, %d columns)", path, ds.Len(), len(ds.Columns))}
}

func summarizeTMDBError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (TMDB API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (TMDB API unreachable)"
	}
	if status, ok := tmdb.StatusCode(err); ok {
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api key)"
		default:
			return fmt.Sprintf("check failed (%d)", status)
		}
	}
	return err.Error()
}

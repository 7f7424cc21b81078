package enrichment

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"moviedata/internal/fileutil"
	"moviedata/internal/movie"
)

// CheckpointVersion is bumped whenever the checkpoint layout changes.
const CheckpointVersion = 1

var (
	// ErrCheckpointVersion reports a checkpoint written by an incompatible version.
	ErrCheckpointVersion = errors.New("checkpoint version mismatch")
	// ErrCheckpointMismatch reports a checkpoint taken over a different input dataset.
	ErrCheckpointMismatch = errors.New("checkpoint does not match input dataset")
	// ErrCheckpointLocked reports another run holding the checkpoint lock.
	ErrCheckpointLocked = errors.New("checkpoint is locked by another run")
)

// Checkpoint is the persisted state of an interrupted run.
type Checkpoint struct {
	Version     int            `json:"version"`
	RunID       string         `json:"run_id"`
	Fingerprint string         `json:"fingerprint"`
	TotalRows   int            `json:"total_rows"`
	NextIndex   int            `json:"next_index"`
	Columns     []string       `json:"columns"`
	Rows        []movie.Record `json:"rows"`
	Stats       Stats          `json:"stats"`
	SavedAt     time.Time      `json:"saved_at"`
}

// Progress is the human-readable companion to the checkpoint.
type Progress struct {
	RunID                string    `json:"run_id"`
	CurrentIndex         int       `json:"current_index"`
	TotalRows            int       `json:"total_rows"`
	TotalProcessed       int       `json:"total_processed"`
	TotalEnriched        int       `json:"total_enriched"`
	TotalFailed          int       `json:"total_failed"`
	APICalls             int       `json:"api_calls"`
	Timestamp            time.Time `json:"timestamp"`
	CompletionPercentage float64   `json:"completion_percentage"`
	RowsPerSecond        float64   `json:"rows_per_second"`
	ETASeconds           float64   `json:"eta_seconds"`
}

// CheckpointStore persists checkpoints at a fixed path and holds an exclusive
// lock file beside it while a run is active.
type CheckpointStore struct {
	path string
	lock *flock.Flock
}

// NewCheckpointStore returns a store for path. The lock lives at path + ".lock".
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the checkpoint file location.
func (s *CheckpointStore) Path() string {
	return s.path
}

// Lock acquires the run lock without blocking.
func (s *CheckpointStore) Lock() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire checkpoint lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrCheckpointLocked, s.lock.Path())
	}
	return nil
}

// Unlock releases the run lock.
func (s *CheckpointStore) Unlock() error {
	return s.lock.Unlock()
}

// Load reads the checkpoint. found is false when none exists.
func (s *CheckpointStore) Load() (*Checkpoint, bool, error) {
	var cp Checkpoint
	found, err := fileutil.ReadJSON(s.path, &cp)
	if err != nil {
		return nil, false, fmt.Errorf("load checkpoint: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	if cp.Version != CheckpointVersion {
		return nil, false, fmt.Errorf("%w: file has version %d, want %d", ErrCheckpointVersion, cp.Version, CheckpointVersion)
	}
	return &cp, true, nil
}

// Save writes cp atomically.
func (s *CheckpointStore) Save(cp *Checkpoint) error {
	cp.Version = CheckpointVersion
	if err := fileutil.WriteJSON(s.path, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Remove deletes the checkpoint.
func (s *CheckpointStore) Remove() error {
	if err := fileutil.RemoveIfExists(s.path); err != nil {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

// Matches reports whether cp was taken over ds.
func (cp *Checkpoint) Matches(ds *movie.Dataset) error {
	if cp.TotalRows != ds.Len() {
		return fmt.Errorf("%w: checkpoint covers %d rows, input has %d", ErrCheckpointMismatch, cp.TotalRows, ds.Len())
	}
	if cp.Fingerprint != Fingerprint(ds) {
		return fmt.Errorf("%w: input columns or ids changed", ErrCheckpointMismatch)
	}
	if cp.NextIndex < 0 || cp.NextIndex > cp.TotalRows || len(cp.Rows) != cp.NextIndex {
		return fmt.Errorf("%w: resume index %d inconsistent with %d saved rows", ErrCheckpointMismatch, cp.NextIndex, len(cp.Rows))
	}
	return nil
}

// Fingerprint hashes the schema and the id column of ds.
func Fingerprint(ds *movie.Dataset) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(ds.Columns, "\x1f")))
	for _, record := range ds.Records {
		h.Write([]byte{0x1e})
		h.Write([]byte(record.ID()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// WriteProgress writes the progress snapshot atomically.
func WriteProgress(path string, progress Progress) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := fileutil.WriteJSON(path, progress); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}

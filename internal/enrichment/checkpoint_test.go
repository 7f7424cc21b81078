package enrichment_test

import (
	"errors"
	"path/filepath"
	"testing"

	"moviedata/internal/enrichment"
	"moviedata/internal/movie"
	"moviedata/internal/testsupport"
)

func TestFingerprintTracksColumnsAndIDs(t *testing.T) {
	base := testsupport.Dataset(t, "id,title\n1,A\n2,B\n")
	sameIDs := testsupport.Dataset(t, "id,title\n1,Renamed\n2,B\n")
	otherIDs := testsupport.Dataset(t, "id,title\n1,A\n3,B\n")
	otherCols := testsupport.Dataset(t, "id,name\n1,A\n2,B\n")

	if enrichment.Fingerprint(base) != enrichment.Fingerprint(sameIDs) {
		t.Fatal("fingerprint should ignore non-id values")
	}
	if enrichment.Fingerprint(base) == enrichment.Fingerprint(otherIDs) {
		t.Fatal("fingerprint should change with ids")
	}
	if enrichment.Fingerprint(base) == enrichment.Fingerprint(otherCols) {
		t.Fatal("fingerprint should change with columns")
	}
}

func TestCheckpointMatches(t *testing.T) {
	ds := testsupport.Dataset(t, "id,title\n1,A\n2,B\n3,C\n")
	good := func() *enrichment.Checkpoint {
		return &enrichment.Checkpoint{
			Fingerprint: enrichment.Fingerprint(ds),
			TotalRows:   3,
			NextIndex:   1,
			Rows:        []movie.Record{ds.Records[0]},
		}
	}

	tests := []struct {
		name   string
		mutate func(*enrichment.Checkpoint)
		ok     bool
	}{
		{name: "consistent", mutate: func(*enrichment.Checkpoint) {}, ok: true},
		{name: "row count", mutate: func(cp *enrichment.Checkpoint) { cp.TotalRows = 4 }},
		{name: "fingerprint", mutate: func(cp *enrichment.Checkpoint) { cp.Fingerprint = "x" }},
		{name: "index past rows", mutate: func(cp *enrichment.Checkpoint) { cp.NextIndex = 2 }},
		{name: "negative index", mutate: func(cp *enrichment.Checkpoint) { cp.NextIndex = -1; cp.Rows = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := good()
			tt.mutate(cp)
			err := cp.Matches(ds)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, enrichment.ErrCheckpointMismatch) {
				t.Fatalf("expected ErrCheckpointMismatch, got %v", err)
			}
		})
	}
}

func TestCheckpointStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "checkpoint.json")
	store := enrichment.NewCheckpointStore(path)

	if _, found, err := store.Load(); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}
	if err := store.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := enrichment.NewCheckpointStore(path).Lock(); !errors.Is(err, enrichment.ErrCheckpointLocked) {
		t.Fatalf("second Lock: expected ErrCheckpointLocked, got %v", err)
	}

	if err := store.Save(&enrichment.Checkpoint{RunID: "r1", TotalRows: 5, NextIndex: 0}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cp, found, err := store.Load()
	if err != nil || !found {
		t.Fatalf("Load: found=%v err=%v", found, err)
	}
	if cp.Version != enrichment.CheckpointVersion || cp.RunID != "r1" {
		t.Fatalf("unexpected checkpoint: %+v", cp)
	}

	if err := store.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(); err != nil {
		t.Fatalf("Remove twice: %v", err)
	}
	if err := store.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	other := enrichment.NewCheckpointStore(path)
	if err := other.Lock(); err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	_ = other.Unlock()
}

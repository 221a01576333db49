package index

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2027, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := db.Record(Run{
			Input:    "/data/huge.txt",
			Prefix:   "/data/out",
			MaxItems: 500,
			Lines:    1000 + i,
			Segments: 3 + i,
			Started:  base.Add(time.Duration(i) * time.Hour),
			Finished: base.Add(time.Duration(i)*time.Hour + time.Minute),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := db.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Recent returned %d runs, want 2", len(runs))
	}

	// Newest first.
	if runs[0].Lines != 1002 || runs[1].Lines != 1001 {
		t.Errorf("run order wrong: lines %d, %d", runs[0].Lines, runs[1].Lines)
	}
	if !runs[0].Started.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("Started = %v", runs[0].Started)
	}
	if runs[0].MaxItems != 500 || runs[0].Segments != 5 {
		t.Errorf("run fields = %+v", runs[0])
	}
}

func TestRecentEmpty(t *testing.T) {
	db := openTestDB(t)

	runs, err := db.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Recent on empty index = %v", runs)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	now := time.Now()
	if err := db.Record(Run{Input: "a", Prefix: "b", MaxItems: 1, Started: now, Finished: now}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	runs, err := db2.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 || runs[0].Input != "a" {
		t.Errorf("history lost across reopen: %v", runs)
	}
}

// Package index keeps a persistent history of split runs in a SQLite
// database, one row per run.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	input         TEXT NOT NULL,
	prefix        TEXT NOT NULL,
	max_items     INTEGER NOT NULL,
	line_count    INTEGER NOT NULL,
	segment_count INTEGER NOT NULL,
	started       TEXT NOT NULL,
	finished      TEXT NOT NULL
);
`

// Run is one recorded split run.
type Run struct {
	ID       int64
	Input    string
	Prefix   string
	MaxItems int
	Lines    int
	Segments int
	Started  time.Time
	Finished time.Time
}

// DB wraps the run-history database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) the run index at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run index %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init run index %s: %w", path, err)
	}

	return &DB{db: db}, nil
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Record appends one run to the history.
func (d *DB) Record(r Run) error {
	_, err := d.db.Exec(
		`INSERT INTO runs (input, prefix, max_items, line_count, segment_count, started, finished)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Input, r.Prefix, r.MaxItems, r.Lines, r.Segments,
		r.Started.UTC().Format(time.RFC3339), r.Finished.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first.
func (d *DB) Recent(n int) ([]Run, error) {
	rows, err := d.db.Query(
		`SELECT id, input, prefix, max_items, line_count, segment_count, started, finished
		 FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Input, &r.Prefix, &r.MaxItems,
			&r.Lines, &r.Segments, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.Started, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parse started %q: %w", started, err)
		}
		if r.Finished, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("parse finished %q: %w", finished, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// Package dirmap builds a small lookup table over a directory tree: one
// row of caller-defined info per directory that contains a file matching a
// wildcard pattern, plus an id to absolute-path mapping. The table side is
// persisted as CSV, the path mapping as a msgpack blob.
package dirmap

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/johns/seqsplit/internal/discover"
)

// InfoFunc extracts one table row for a matched directory. The returned
// slice length must equal the column count the map was built with.
type InfoFunc func(absDir string) ([]string, error)

// Map holds the built lookup table.
type Map struct {
	Description string
	Columns     []string

	ids   []int // insertion order, 1-based ids
	rows  map[int][]string
	paths map[int]string
}

// New returns an empty map ready for Build or Load.
func New(desc string, columns []string) *Map {
	return &Map{
		Description: desc,
		Columns:     columns,
		rows:        make(map[int][]string),
		paths:       make(map[int]string),
	}
}

// Build walks the tree under top and records every directory containing a
// file matching pattern, assigning ids in walk order starting at 1.
func Build(top, pattern string, columns []string, info InfoFunc, desc string) (*Map, error) {
	m := New(desc, columns)

	err := discover.WalkDirs(top, pattern, func(dir string) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", dir, err)
		}
		row, err := info(abs)
		if err != nil {
			return fmt.Errorf("collect info for %s: %w", abs, err)
		}
		if len(row) != len(columns) {
			return fmt.Errorf("info for %s: %d values for %d columns", abs, len(row), len(columns))
		}

		id := len(m.ids) + 1
		m.ids = append(m.ids, id)
		m.paths[id] = abs
		m.rows[id] = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Len returns the number of mapped directories.
func (m *Map) Len() int { return len(m.ids) }

// Path returns the absolute directory path for an id.
func (m *Map) Path(id int) (string, bool) {
	p, ok := m.paths[id]
	return p, ok
}

// Each iterates rows in id order.
func (m *Map) Each(fn func(id int, path string, row []string) error) error {
	for _, id := range m.ids {
		if err := fn(id, m.paths[id], m.rows[id]); err != nil {
			return err
		}
	}
	return nil
}

// Filter returns the ids whose row has value in the named column, in id
// order.
func (m *Map) Filter(column, value string) ([]int, error) {
	col := -1
	for i, c := range m.Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("unknown column %q (have %v)", column, m.Columns)
	}

	var ids []int
	for _, id := range m.ids {
		if m.rows[id][col] == value {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// CSVPath returns the table file name under dir for a description.
func CSVPath(dir, desc string) string {
	return filepath.Join(dir, fmt.Sprintf("DirMap_%s_df.csv", desc))
}

// BinPath returns the path-map blob file name under dir for a description.
func BinPath(dir, desc string) string {
	return filepath.Join(dir, fmt.Sprintf("DirMap_%s_d.bin", desc))
}

// Save writes the table as CSV and the id-to-path mapping as msgpack
// under dir.
func (m *Map) Save(dir string) error {
	csvPath := CSVPath(dir, m.Description)
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", csvPath, err)
	}

	w := csv.NewWriter(f)
	header := append([]string{"id"}, m.Columns...)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	for _, id := range m.ids {
		record := append([]string{strconv.Itoa(id)}, m.rows[id]...)
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", csvPath, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", csvPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", csvPath, err)
	}

	binPath := BinPath(dir, m.Description)
	blob, err := msgpack.Marshal(m.paths)
	if err != nil {
		return fmt.Errorf("encode path map: %w", err)
	}
	if err := os.WriteFile(binPath, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", binPath, err)
	}

	return nil
}

// Load restores a saved map from its CSV table and msgpack path blob.
// Loading over an already-populated map is an error.
func (m *Map) Load(csvPath, binPath string) error {
	if len(m.ids) > 0 {
		return fmt.Errorf("map already holds %d entries, refusing to load", len(m.ids))
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", csvPath, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("parse %s: %w", csvPath, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: missing header row", csvPath)
	}
	if len(records[0]) < 1 || records[0][0] != "id" {
		return fmt.Errorf("%s: first column must be id, got %v", csvPath, records[0])
	}
	m.Columns = records[0][1:]

	for _, rec := range records[1:] {
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			return fmt.Errorf("%s: bad id %q: %w", csvPath, rec[0], err)
		}
		m.ids = append(m.ids, id)
		m.rows[id] = rec[1:]
	}

	blob, err := os.ReadFile(binPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", binPath, err)
	}
	if err := msgpack.Unmarshal(blob, &m.paths); err != nil {
		return fmt.Errorf("decode %s: %w", binPath, err)
	}

	for _, id := range m.ids {
		if _, ok := m.paths[id]; !ok {
			return fmt.Errorf("id %d present in %s but missing from %s", id, csvPath, binPath)
		}
	}
	sort.Ints(m.ids)

	return nil
}

// Open is a convenience wrapper that loads a saved map. The description is
// recovered from the CSV file name.
func Open(csvPath, binPath string) (*Map, error) {
	m := New(descFromPath(csvPath), nil)
	if err := m.Load(csvPath, binPath); err != nil {
		return nil, err
	}
	return m, nil
}

func descFromPath(csvPath string) string {
	base := filepath.Base(csvPath)
	base = strings.TrimPrefix(base, "DirMap_")
	return strings.TrimSuffix(base, "_df.csv")
}

// Package outpath derives output file names for a split run and writes
// segment files under a strict create-only rule, so a re-run with the same
// prefix can never clobber artifacts from an earlier run.
package outpath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Segment returns the deterministic path for a segment sequence number.
func Segment(prefix string, seq int) string {
	return fmt.Sprintf("%s_%d.txt", prefix, seq)
}

// Log returns the run-log path for an output prefix.
func Log(prefix string) string {
	return prefix + "_log.txt"
}

// Writer persists finished segments for one output prefix.
type Writer struct {
	Prefix string
}

// WriteSegment writes lines newline-joined to the path for seq and returns
// that path. An existing target aborts with an error wrapping fs.ErrExist.
func (w *Writer) WriteSegment(seq int, lines []string) (string, error) {
	path := Segment(w.Prefix, seq)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("segment %d: output file %s already exists: %w", seq, path, fs.ErrExist)
		}
		return "", fmt.Errorf("segment %d: create %s: %w", seq, path, err)
	}

	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return "", fmt.Errorf("segment %d: write %s: %w", seq, path, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("segment %d: close %s: %w", seq, path, err)
	}

	return path, nil
}

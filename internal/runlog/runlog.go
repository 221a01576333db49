// Package runlog records what a split run did: the settings it started
// with, one event per flushed segment, and a final summary. The segmenter
// writes through the Sink interface so tests can capture events in memory
// instead of touching the filesystem.
package runlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// Settings captures the configuration of one split run.
type Settings struct {
	Tool          string
	Version       string
	Input         string
	OutputPrefix  string
	MaxItems      int
	FieldPrefixes []string
	Separator     string
	Start         time.Time
}

// Sink receives run events in processing order. Exactly one writer exists
// per run, so implementations need no locking.
type Sink interface {
	Settings(s Settings)
	Segment(seq int, path string, lines int)
	Failure(msg string)
	Summary(lines, segments int)
}

// FileSink appends run events to a plain-text log artifact. The file is
// create-only: a leftover log from a previous run with the same prefix is
// never appended to.
type FileSink struct {
	path string
	f    *os.File
	err  error // first write error, reported by Close
}

// NewFileSink creates the log file at path. An existing file is a
// collision error, mirroring the create-only rule for segment files.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL|os.O_APPEND, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("run log %s already exists: %w", path, fs.ErrExist)
		}
		return nil, fmt.Errorf("create run log %s: %w", path, err)
	}
	return &FileSink{path: path, f: f}, nil
}

// Path returns the log file location.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) printf(format string, args ...interface{}) {
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.f, format, args...); err != nil {
		s.err = fmt.Errorf("write run log %s: %w", s.path, err)
	}
}

func (s *FileSink) Settings(set Settings) {
	s.printf("[Process setting]\n")
	s.printf("tool = %s v%s\n", set.Tool, set.Version)
	s.printf("start_time = %s\n", set.Start.Format(time.RFC3339))
	s.printf("input_file = %s\n", set.Input)
	s.printf("output_file_prefix = %s\n", set.OutputPrefix)
	s.printf("max_item_num = %d\n", set.MaxItems)
	s.printf("item_prefixes = %s\n", strings.Join(set.FieldPrefixes, ", "))
	s.printf("item_separator = %q\n", set.Separator)
	s.printf("\n[Process log]\n")
}

func (s *FileSink) Segment(seq int, path string, lines int) {
	s.printf("segment %d: saved %d lines to %s\n", seq, lines, path)
}

func (s *FileSink) Failure(msg string) {
	s.printf("FAILED: %s\n", msg)
}

func (s *FileSink) Summary(lines, segments int) {
	s.printf("\nA total of %d lines (except empty lines) were recognized.\n", lines)
	s.printf("These lines were saved separately into %d files.\n", segments)
}

// Close flushes the log file and reports the first write error, if any.
func (s *FileSink) Close() error {
	closeErr := s.f.Close()
	if s.err != nil {
		return s.err
	}
	if closeErr != nil {
		return fmt.Errorf("close run log %s: %w", s.path, closeErr)
	}
	return nil
}

// EventKind discriminates recorded MemSink events.
type EventKind int

const (
	EventSettings EventKind = iota
	EventSegment
	EventFailure
	EventSummary
)

// Event is one recorded sink call.
type Event struct {
	Kind     EventKind
	Settings Settings
	Seq      int
	Path     string
	Lines    int
	Msg      string
	Segments int
}

// MemSink records events in call order, for tests.
type MemSink struct {
	Events []Event
}

func (s *MemSink) Settings(set Settings) {
	s.Events = append(s.Events, Event{Kind: EventSettings, Settings: set})
}

func (s *MemSink) Segment(seq int, path string, lines int) {
	s.Events = append(s.Events, Event{Kind: EventSegment, Seq: seq, Path: path, Lines: lines})
}

func (s *MemSink) Failure(msg string) {
	s.Events = append(s.Events, Event{Kind: EventFailure, Msg: msg})
}

func (s *MemSink) Summary(lines, segments int) {
	s.Events = append(s.Events, Event{Kind: EventSummary, Lines: lines, Segments: segments})
}

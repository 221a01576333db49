// Package split implements the streaming segmenter at the heart of
// seqsplit. It reads a two-level tagged text stream (">>" opens a group,
// ">" opens an item inside the current group, anything else is item data)
// in a single forward pass and re-emits it as bounded output segments.
//
// A segment is closed when a new group begins, or when the current group's
// item count reaches the configured maximum. When a group is split across
// segments, its header line is repeated at the top of every continuation
// segment so each output file stays independently parseable.
package split

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/johns/seqsplit/internal/fields"
	"github.com/johns/seqsplit/internal/runlog"
)

// Version is stamped into run logs and reported by the CLI.
const Version = "0.3.0"

// Line-prefix sigils. The group sigil is a strict prefix-superset of the
// item sigil, so group must always be tested first.
const (
	GroupSigil = ">>"
	ItemSigil  = ">"
)

// ErrConfig marks configuration errors rejected before any I/O happens.
var ErrConfig = errors.New("invalid split configuration")

// Options configures one split run.
type Options struct {
	// MaxItems is the maximum number of item markers per segment.
	// Must be positive.
	MaxItems int

	// FieldPrefixes, when non-empty, turns on data-line rewriting: each
	// data line must consist of exactly len(FieldPrefixes) whitespace
	// separated fields whose positional prefixes are stripped.
	FieldPrefixes []string

	// Separator joins the stripped field values of a rewritten data line.
	Separator string
}

// Result reports what a finished run consumed and produced.
type Result struct {
	Lines    int // non-blank input lines
	Segments int // output segments written
}

// SegmentSink persists one finished segment and returns its location.
// Sequence numbers arrive strictly increasing, starting at 1.
type SegmentSink interface {
	WriteSegment(seq int, lines []string) (path string, err error)
}

// Run performs a single split pass over r. Progress events go to log in
// processing order; log may be nil. The context is checked once per line
// and a write in progress is never abandoned, so cancellation cannot leave
// a half-written segment behind.
func Run(ctx context.Context, r io.Reader, opts Options, sink SegmentSink, log runlog.Sink) (Result, error) {
	if opts.MaxItems <= 0 {
		return Result{}, fmt.Errorf("%w: max items must be positive, got %d", ErrConfig, opts.MaxItems)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024) // 16MB max line

	var (
		res         Result
		groupHeader string
		itemCount   int
		pending     []string
		seq         = 1
		lineNum     int
	)

	flush := func() error {
		path, err := sink.WriteSegment(seq, pending)
		if err != nil {
			return err
		}
		if log != nil {
			log.Segment(seq, path, len(pending))
		}
		res.Segments++
		seq++
		pending = nil
		return nil
	}

	for sc.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("line %d: %w", lineNum, err)
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, GroupSigil):
			// A new group closes the previous one, but only if it
			// actually buffered anything: back-to-back group markers
			// produce no empty intermediate segment.
			if len(pending) > 0 {
				if err := flush(); err != nil {
					return res, err
				}
			}
			itemCount = 0
			groupHeader = line

		case strings.HasPrefix(line, ItemSigil):
			if itemCount >= opts.MaxItems {
				if err := flush(); err != nil {
					return res, err
				}
				// Continuation segments re-state the group header so
				// every output file identifies its group.
				if groupHeader != "" {
					pending = append(pending, groupHeader)
				}
				itemCount = 0
			}
			itemCount++

		default:
			rewritten, err := fields.Transform(line, opts.FieldPrefixes, opts.Separator)
			if err != nil {
				err = fmt.Errorf("line %d: %w", lineNum, err)
				if log != nil {
					log.Failure(err.Error())
				}
				return res, err
			}
			line = rewritten
		}

		pending = append(pending, line)
		res.Lines++
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read input after line %d: %w", lineNum, err)
	}

	if len(pending) > 0 {
		if err := flush(); err != nil {
			return res, err
		}
	}

	if log != nil {
		log.Summary(res.Lines, res.Segments)
	}
	return res, nil
}

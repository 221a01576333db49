package fields

import (
	"fmt"
	"strings"
)

// MismatchError reports a data line that does not fit the expected field
// layout. It carries the raw line and the configured prefixes so a failed
// run can be diagnosed without re-running.
type MismatchError struct {
	Line     string
	Prefixes []string
	Reason   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s (line %q, expected prefixes %v)", e.Reason, e.Line, e.Prefixes)
}

// Transform splits line on whitespace into exactly len(prefixes) fields,
// strips each field's positional prefix, and joins the stripped values
// with sep. Every field must start with its expected prefix; the prefix is
// removed exactly once, so a value containing the prefix substring again
// keeps the later occurrence.
//
// An empty prefix list is a pass-through: the line is returned unchanged.
func Transform(line string, prefixes []string, sep string) (string, error) {
	if len(prefixes) == 0 {
		return line, nil
	}

	parts := strings.Fields(line)
	if len(parts) != len(prefixes) {
		return "", &MismatchError{
			Line:     line,
			Prefixes: prefixes,
			Reason:   fmt.Sprintf("expected %d fields, found %d", len(prefixes), len(parts)),
		}
	}

	values := make([]string, len(parts))
	for i, part := range parts {
		rest, ok := strings.CutPrefix(part, prefixes[i])
		if !ok {
			return "", &MismatchError{
				Line:     line,
				Prefixes: prefixes,
				Reason:   fmt.Sprintf("field %d %q does not start with %q", i+1, part, prefixes[i]),
			}
		}
		values[i] = rest
	}

	return strings.Join(values, sep), nil
}

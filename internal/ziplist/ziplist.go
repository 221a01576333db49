// Package ziplist reads manifest listings and member lines out of zipped
// data folders without extracting them.
package ziplist

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
)

const manifestName = "0.filelist"

// Manifest reads "<folder>/0.filelist" from inside the archive, where
// folder is the zip file's base name without extension, and validates the
// itemnum header against the listed names.
func Manifest(zipPath string) ([]string, error) {
	folder := strings.TrimSuffix(filepath.Base(zipPath), ".zip")
	member := folder + "/" + manifestName

	want := -1
	var names []string
	err := Lines(zipPath, member, func(line string) error {
		line = strings.TrimSpace(line)
		if line == "" {
			return nil
		}
		if rest, ok := strings.CutPrefix(line, "itemnum:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return fmt.Errorf("bad itemnum line %q: %w", line, err)
			}
			want = n
			return nil
		}
		names = append(names, line)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if want >= 0 && want != len(names) {
		return nil, fmt.Errorf("%s: itemnum %d but %d entries listed", member, want, len(names))
	}
	return names, nil
}

// Lines streams the named member's lines through emit.
func Lines(zipPath, member string, emit func(line string) error) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", zipPath, err)
	}
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.Name != member {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("open member %s in %s: %w", member, zipPath, err)
		}

		sc := bufio.NewScanner(rc)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for sc.Scan() {
			if err := emit(sc.Text()); err != nil {
				rc.Close()
				return err
			}
		}
		if err := sc.Err(); err != nil {
			rc.Close()
			return fmt.Errorf("read member %s in %s: %w", member, zipPath, err)
		}
		return rc.Close()
	}

	return fmt.Errorf("zip %s has no member %s", zipPath, member)
}

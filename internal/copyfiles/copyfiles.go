// Package copyfiles copies files between directories, tracked by a plain
// manifest file ("0.filelist") listing the directory's payload entries.
package copyfiles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/johns/seqsplit/internal/discover"
)

// ManifestName is the per-directory listing file. Names starting with "0"
// or "." are bookkeeping and never listed as payload.
const ManifestName = "0.filelist"

// WriteManifest lists dir's payload entries into its manifest file and
// returns the listed names, sorted by the directory order of os.ReadDir.
func WriteManifest(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "0") {
			continue
		}
		names = append(names, name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "itemnum: %d\n", len(names))
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('\n')
	}

	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write manifest %s: %w", path, err)
	}
	return names, nil
}

// ReadManifest parses a manifest file and validates the itemnum header
// against the listed names.
func ReadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer f.Close()

	want := -1
	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "itemnum:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return nil, fmt.Errorf("manifest %s: bad itemnum %q: %w", path, line, err)
			}
			want = n
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	if want >= 0 && want != len(names) {
		return nil, fmt.Errorf("manifest %s: itemnum %d but %d entries listed", path, want, len(names))
	}
	return names, nil
}

// ReadList reads a plain one-name-per-line list, skipping itemnum headers,
// so a manifest file works as a query list too.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var items []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "itemnum") {
			continue
		}
		items = append(items, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return items, nil
}

// BySuffix copies every file in inputDir whose name ends in one of the
// suffixes into outputDir, then refreshes outputDir's manifest. The input
// listing comes from an existing manifest when present, otherwise one is
// generated. Returns the number of files copied.
func BySuffix(inputDir string, suffixes []string, outputDir string) (int, error) {
	manifest := filepath.Join(inputDir, ManifestName)

	var names []string
	var err error
	if _, statErr := os.Stat(manifest); statErr == nil {
		names, err = ReadManifest(manifest)
	} else {
		names, err = WriteManifest(inputDir)
	}
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, name := range names {
		matched := false
		for _, sfx := range suffixes {
			if strings.HasSuffix(name, sfx) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if err := copyFile(filepath.Join(inputDir, name), filepath.Join(outputDir, name)); err != nil {
			return copied, err
		}
		copied++
	}

	if _, err := WriteManifest(outputDir); err != nil {
		return copied, err
	}
	return copied, nil
}

// PatternFormatter turns a query string into a wildcard pattern.
type PatternFormatter func(query string) string

// Formatter builds a PatternFormatter from an optional literal prefix and
// suffix. An empty prefix or suffix widens that side to a wildcard.
func Formatter(prefix, suffix string) PatternFormatter {
	switch {
	case prefix == "" && suffix == "":
		return func(q string) string { return "*" + q + "*" }
	case prefix == "":
		return func(q string) string { return "*" + q + suffix }
	case suffix == "":
		return func(q string) string { return prefix + q + "*" }
	default:
		return func(q string) string { return prefix + q + suffix }
	}
}

// ByQuery searches the tree under top once per query and copies every
// match into outDir, then writes outDir's manifest. Queries with no match
// are returned in misses rather than failing the run.
func ByQuery(queries []string, top, outDir string, format PatternFormatter) (copied int, misses []string, err error) {
	for _, q := range queries {
		pattern := format(q)
		found := 0

		walkErr := discover.WalkFiles(top, pattern, func(path string) error {
			if err := copyFile(path, filepath.Join(outDir, filepath.Base(path))); err != nil {
				return err
			}
			found++
			return nil
		})
		if walkErr != nil {
			return copied, misses, walkErr
		}

		if found == 0 {
			misses = append(misses, q)
		}
		copied += found
	}

	if _, err := WriteManifest(outDir); err != nil {
		return copied, misses, err
	}
	return copied, misses, nil
}

// copyFile copies src to dst preserving mode and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set times on %s: %w", dst, err)
	}
	return nil
}

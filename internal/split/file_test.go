package split

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeInput(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, sampleInput)
	prefix := filepath.Join(dir, "out")

	res, err := File(context.Background(), input, prefix, Options{MaxItems: 1})
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if res.Segments != 3 || res.Lines != 8 {
		t.Errorf("Result = %+v, want 3 segments / 8 lines", res)
	}

	wantFiles := map[string]string{
		"out_1.txt": ">>G1\n>1\nA B\n",
		"out_2.txt": ">>G1\n>2\nC D\n",
		"out_3.txt": ">>G2\n>1\nE F\n",
	}
	for name, want := range wantFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("ReadFile %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", name, string(data), want)
		}
	}

	// No fourth segment.
	if _, err := os.Stat(filepath.Join(dir, "out_4.txt")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("unexpected out_4.txt")
	}

	logData, err := os.ReadFile(filepath.Join(dir, "out_log.txt"))
	if err != nil {
		t.Fatalf("read run log: %v", err)
	}
	log := string(logData)
	for _, want := range []string{
		"[Process setting]",
		"max_item_num = 1",
		"[Process log]",
		"segment 3: saved 3 lines to",
		"A total of 8 lines (except empty lines) were recognized.",
		"These lines were saved separately into 3 files.",
	} {
		if !strings.Contains(log, want) {
			t.Errorf("run log missing %q\nlog:\n%s", want, log)
		}
	}
}

func TestFileSecondRunCollides(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, sampleInput)
	prefix := filepath.Join(dir, "out")

	if _, err := File(context.Background(), input, prefix, Options{MaxItems: 1}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	_, err := File(context.Background(), input, prefix, Options{MaxItems: 1})
	if err == nil {
		t.Fatal("second run with same prefix should fail")
	}
	if !errors.Is(err, fs.ErrExist) {
		t.Errorf("err = %v, want fs.ErrExist", err)
	}

	// First run's artifacts are untouched.
	data, err := os.ReadFile(filepath.Join(dir, "out_1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ">>G1\n>1\nA B\n" {
		t.Errorf("out_1.txt modified by failed second run: %q", string(data))
	}
}

func TestFileConfigErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, sampleInput)

	cases := []struct {
		name   string
		input  string
		prefix string
		max    int
	}{
		{"zero max items", input, filepath.Join(dir, "a"), 0},
		{"empty input path", "", filepath.Join(dir, "b"), 5},
		{"empty prefix", input, "", 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := File(context.Background(), tc.input, tc.prefix, Options{MaxItems: tc.max})
			if !errors.Is(err, ErrConfig) {
				t.Errorf("err = %v, want ErrConfig", err)
			}
		})
	}

	// Config errors must be rejected before any artifact is created.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 { // only input.txt
		t.Errorf("config errors left artifacts behind: %v", entries)
	}
}

func TestFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := File(context.Background(), filepath.Join(dir, "nope.txt"), filepath.Join(dir, "out"), Options{MaxItems: 5})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

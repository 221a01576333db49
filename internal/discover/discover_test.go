package discover

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// buildTree creates:
//
//	root/a/sfs_data.txt
//	root/a/notes.md
//	root/b/inner/sfs_data.txt
//	root/b/inner/sfs_extra.txt
//	root/c/other.txt
func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := []string{
		"a/sfs_data.txt",
		"a/notes.md",
		"b/inner/sfs_data.txt",
		"b/inner/sfs_extra.txt",
		"c/other.txt",
	}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestFiles(t *testing.T) {
	root := buildTree(t)

	got, err := Files(root, "sfs_*.txt")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []string{
		filepath.Join(root, "a", "sfs_data.txt"),
		filepath.Join(root, "b", "inner", "sfs_data.txt"),
		filepath.Join(root, "b", "inner", "sfs_extra.txt"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Files = %v, want %v", got, want)
	}
}

func TestDirs(t *testing.T) {
	root := buildTree(t)

	got, err := Dirs(root, "sfs_data.txt")
	if err != nil {
		t.Fatalf("Dirs: %v", err)
	}

	want := []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "b", "inner"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dirs = %v, want %v", got, want)
	}
}

func TestDirsReportedOnce(t *testing.T) {
	root := buildTree(t)

	// b/inner has two matching files but must be reported once.
	calls := 0
	err := WalkDirs(root, "sfs_*.txt", func(dir string) error {
		if dir == filepath.Join(root, "b", "inner") {
			calls++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDirs: %v", err)
	}
	if calls != 1 {
		t.Errorf("dir reported %d times, want 1", calls)
	}
}

func TestWalkFilesCallbackError(t *testing.T) {
	root := buildTree(t)

	sentinel := errors.New("stop")
	err := WalkFiles(root, "*", func(string) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want sentinel", err)
	}
}

func TestBadPattern(t *testing.T) {
	if _, err := Files(t.TempDir(), "[unclosed"); err == nil {
		t.Error("Files with bad pattern should fail")
	}
}

func TestNoMatches(t *testing.T) {
	got, err := Files(buildTree(t), "*.csv")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Files = %v, want none", got)
	}
}

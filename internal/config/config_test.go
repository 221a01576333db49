package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxItems != 500 {
		t.Errorf("MaxItems = %d", cfg.MaxItems)
	}
	if cfg.Separator != "\t" {
		t.Errorf("Separator = %q", cfg.Separator)
	}
	if len(cfg.FieldPrefixes) != 0 {
		t.Errorf("FieldPrefixes should default empty, got %v", cfg.FieldPrefixes)
	}
	if cfg.IndexPath != "~/.local/share/seqsplit/runs.db" {
		t.Errorf("IndexPath = %q", cfg.IndexPath)
	}
	if cfg.Watch.Pattern != "*.txt" {
		t.Errorf("Watch.Pattern = %q", cfg.Watch.Pattern)
	}
}

func TestLoad_NoConfig(t *testing.T) {
	// Point XDG to an empty dir so no config file is found
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Should have expanded defaults (IndexPath no longer starts with ~/)
	if strings.HasPrefix(cfg.IndexPath, "~/") {
		t.Errorf("IndexPath not expanded: %q", cfg.IndexPath)
	}
	if !strings.HasSuffix(cfg.IndexPath, filepath.Join(".local", "share", "seqsplit", "runs.db")) {
		t.Errorf("IndexPath = %q", cfg.IndexPath)
	}
}

func TestLoad_FromFile(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())

	dir := filepath.Join(xdg, "seqsplit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `max_items = 100
separator = "-"
field_prefixes = ["id:", "val:"]
index_path = "/var/lib/seqsplit/runs.db"

[watch]
dir = "/spool/in"
pattern = "*.dat"
out_dir = "/spool/out"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.MaxItems != 100 {
		t.Errorf("MaxItems = %d, want 100", cfg.MaxItems)
	}
	if cfg.Separator != "-" {
		t.Errorf("Separator = %q, want -", cfg.Separator)
	}
	if !reflect.DeepEqual(cfg.FieldPrefixes, []string{"id:", "val:"}) {
		t.Errorf("FieldPrefixes = %v", cfg.FieldPrefixes)
	}
	if cfg.IndexPath != "/var/lib/seqsplit/runs.db" {
		t.Errorf("IndexPath = %q", cfg.IndexPath)
	}
	if cfg.Watch.Dir != "/spool/in" || cfg.Watch.Pattern != "*.dat" || cfg.Watch.OutDir != "/spool/out" {
		t.Errorf("Watch = %+v", cfg.Watch)
	}
}

// Package config loads seqsplit's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all seqsplit configuration. CLI flags override these
// values per invocation.
type Config struct {
	MaxItems      int      `toml:"max_items"`
	Separator     string   `toml:"separator"`
	FieldPrefixes []string `toml:"field_prefixes"`
	IndexPath     string   `toml:"index_path"`

	Watch WatchConfig `toml:"watch"`
}

// WatchConfig configures the spool-directory watch mode.
type WatchConfig struct {
	Dir     string `toml:"dir"`
	Pattern string `toml:"pattern"`
	OutDir  string `toml:"out_dir"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxItems:  500,
		Separator: "\t",
		IndexPath: "~/.local/share/seqsplit/runs.db",
		Watch: WatchConfig{
			Dir:     "~/seqsplit/spool",
			Pattern: "*.txt",
			OutDir:  "~/seqsplit/out",
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	// Expand ~ in paths
	cfg.IndexPath = expandHome(cfg.IndexPath)
	cfg.Watch.Dir = expandHome(cfg.Watch.Dir)
	cfg.Watch.OutDir = expandHome(cfg.Watch.OutDir)

	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "seqsplit", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "seqsplit", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

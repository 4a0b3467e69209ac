package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.History.MaxEntries != 1000 {
		t.Errorf("History.MaxEntries = %d", cfg.History.MaxEntries)
	}
	if cfg.Rope.MaxLeafSize != 1024 {
		t.Errorf("Rope.MaxLeafSize = %d", cfg.Rope.MaxLeafSize)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "editkit.toml", `
[history]
max_entries = 250

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := Default()
	want.History.MaxEntries = 250
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "editkit.yaml", `
rope:
  max_leaf_size: 512
store:
  path: /tmp/bookmarks.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rope.MaxLeafSize != 512 {
		t.Errorf("Rope.MaxLeafSize = %d", cfg.Rope.MaxLeafSize)
	}
	if cfg.Store.Path != "/tmp/bookmarks.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	// Untouched sections keep defaults.
	if cfg.History.MaxEntries != 1000 {
		t.Errorf("History.MaxEntries = %d", cfg.History.MaxEntries)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "editkit.json", `{}`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeFile(t, "broken.toml", `history = [`)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"HISTORY_MAX_ENTRIES", "77")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "warn")

	path := writeFile(t, "editkit.toml", `
[history]
max_entries = 250
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.History.MaxEntries != 77 {
		t.Errorf("env override lost: MaxEntries = %d", cfg.History.MaxEntries)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("env override lost: Level = %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.History.MaxEntries = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative max_entries should fail validation")
	}

	cfg = Default()
	cfg.Log.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown log level should fail validation")
	}
}

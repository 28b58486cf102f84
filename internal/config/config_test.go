package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DisableCapture || cfg.SyncCells {
		t.Error("capture must be enabled and cells unsynchronized by default")
	}
	if cfg.MaxCallDepth != DefaultMaxCallDepth {
		t.Errorf("default max call depth = %d", cfg.MaxCallDepth)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rill.yaml")
	data := []byte("disable_capture: true\nsync_cells: true\nmax_call_depth: 64\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.DisableCapture || !cfg.SyncCells {
		t.Errorf("flags not loaded: %+v", cfg)
	}
	if cfg.MaxCallDepth != 64 {
		t.Errorf("max_call_depth = %d, want 64", cfg.MaxCallDepth)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rill.yaml")
	if err := os.WriteFile(path, []byte("disable_capture: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxCallDepth != DefaultMaxCallDepth {
		t.Errorf("unset max_call_depth should fall back to default, got %d", cfg.MaxCallDepth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t:::"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const SourceFileExt = ".rill"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".rill"}

// Config holds the runtime options of the interpreter.
//
// The two shared-cell options select between the documented concurrency
// configurations: with SyncCells off (the default), cells use plain owner
// counting and a re-entrant exclusive-access counter, and receiver/argument
// aliasing is caught by the hazard detector as a runtime error. With
// SyncCells on, cells use a real mutex and atomic owner counting for use
// across host goroutines; the same aliasing then shows up as the executor
// blocking on a lock it already holds, not as a structured error.
type Config struct {
	// DisableCapture turns off automatic variable capture. Any free variable
	// reference inside an anonymous function becomes a definition-time error.
	DisableCapture bool `yaml:"disable_capture"`

	// SyncCells guards shared cells with a mutex and makes their owner
	// counting atomic, for embeddings that run scripts on more than one
	// goroutine.
	SyncCells bool `yaml:"sync_cells"`

	// MaxCallDepth bounds script call nesting. Zero means the default.
	MaxCallDepth int `yaml:"max_call_depth"`
}

const DefaultMaxCallDepth = 2000

func Default() *Config {
	return &Config{MaxCallDepth: DefaultMaxCallDepth}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	return cfg, nil
}

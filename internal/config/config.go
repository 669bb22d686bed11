// Package config loads a project's uscript.yaml manifest: module search
// paths, default fuel budget, and which host capabilities a `run`
// invocation grants. Grounded on the teacher's
// internal/eval_harness/models.go LoadModelsConfig/ModelsConfig pattern
// (os.ReadFile + yaml.Unmarshal into a tagged struct, package-level
// defaults applied after unmarshalling).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFuel is used when a manifest omits fuel or none is found at all
// (SPEC_FULL.md §6.1 "--fuel N (default from internal/config's manifest,
// itself defaulting to 1_000_000)").
const DefaultFuel int64 = 1_000_000

// Capabilities lists which effect atoms a `run` invocation may exercise.
// A false/absent field makes the corresponding internal/host interface
// unavailable, so any program invoking that effect traps E4006 rather
// than silently reaching a real filesystem/network/process.
type Capabilities struct {
	IO    bool `yaml:"io"`
	FS    bool `yaml:"fs"`
	Net   bool `yaml:"net"`
	Proc  bool `yaml:"proc"`
	Rand  bool `yaml:"rand"`
	Time  bool `yaml:"time"`
	State bool `yaml:"state"`
}

// Config is the parsed contents of a uscript.yaml manifest.
type Config struct {
	// ModulePaths is parsed from the manifest and stored; import
	// resolution does not read it.
	ModulePaths []string `yaml:"module_paths"`
	// Fuel is the default fuel budget for `run`; a command-line `--fuel`
	// flag always overrides it. `repl` does not read it.
	Fuel int64 `yaml:"fuel"`
	// Capabilities grants host effects to `run`. Absent entirely, no
	// effect atom is granted (the empty Config is the most restrictive
	// one, matching the purity-enforcing fuzz host's stance by default).
	Capabilities Capabilities `yaml:"capabilities"`
}

// Default returns the manifest used when no uscript.yaml is found.
func Default() *Config {
	return &Config{Fuel: DefaultFuel}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	cfg := &Config{Fuel: DefaultFuel}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if cfg.Fuel <= 0 {
		cfg.Fuel = DefaultFuel
	}
	return cfg, nil
}

// Find looks for uscript.yaml in dir, falling back to Default if it
// doesn't exist (a missing manifest is not an error: every command
// works standalone against a single file).
func Find(dir string) (*Config, error) {
	path := dir + "/uscript.yaml"
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("stat manifest %s: %w", path, err)
	}
	return Load(path)
}

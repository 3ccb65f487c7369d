// Package runtimeconfig holds the handful of process-wide knobs the
// spec's §5 Concurrency & Resource Model calls out explicitly: the
// SipHash key, the parse-cache capacity, and whether color output is
// enabled. Where the C runtime keeps these as file-scope globals
// mutated once at startup, this package expresses the same "set once,
// read everywhere" lifecycle as a single Config value threaded
// through explicitly instead of package-level mutable state (§9
// design note on replacing process-global state with explicit
// handles).
package runtimeconfig

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the resolved set of runtime knobs for one Tomo invocation.
type Config struct {
	HashKey0, HashKey1 uint64 `yaml:"-"`
	ParseCacheSize     int    `yaml:"parse_cache_size"`
	ColorOutput        string `yaml:"color_output"` // "auto", "always", "never"
	ContextLines       int    `yaml:"context_lines"` // lines of source shown around a parse error
}

// Default matches the values the teacher's own CLI driver used before
// any flag or config file is consulted.
func Default() Config {
	return Config{
		ParseCacheSize: 100,
		ColorOutput:    "auto",
		ContextLines:   2,
	}
}

// Load merges a YAML config file (if path is non-empty and exists)
// over Default(), the way a project-level `.tomo.yml` would override
// built-in defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// UseColor resolves the ColorOutput policy against whether stdout
// looks like a terminal, honoring the NO_COLOR convention §7
// describes for highlighted error output.
func (c Config) UseColor(stdoutIsTerminal bool) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	switch c.ColorOutput {
	case "always":
		return true
	case "never":
		return false
	default:
		return stdoutIsTerminal
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// DefaultTarget is the package pattern used when no targets are given.
const DefaultTarget = "./..."

// Flags that keep the go test output machine readable and uncached. They are
// always appended last.
var outputModeFlags = []string{"-json", "-count=1"}

// RunConfig describes what to test. A RunConfig is treated as a value: it is
// never mutated once a run has started, and Clone hands out deep copies.
type RunConfig struct {
	Paths   []string `json:"paths"`
	Keyword string   `json:"keyword"`
	Markers string   `json:"markers"`
	Extra   []string `json:"extra"`
}

// New returns a RunConfig with defaults applied.
func New(paths []string, keyword, markers string, extra []string) RunConfig {
	cfg := RunConfig{
		Paths:   cloneStrings(paths),
		Keyword: strings.TrimSpace(keyword),
		Markers: strings.TrimSpace(markers),
		Extra:   cloneStrings(extra),
	}
	applyDefaults(&cfg)
	return cfg
}

// BuildArgs constructs the go test argument list for a run. A non-empty
// override replaces the configured paths as the leading targets; it is used
// for targeted reruns.
func (c RunConfig) BuildArgs(override []string) []string {
	args := make([]string, 0, len(c.Paths)+len(c.Extra)+6)
	if len(override) > 0 {
		args = append(args, override...)
	} else {
		args = append(args, c.Paths...)
	}
	if c.Keyword != "" {
		args = append(args, "-run", c.Keyword)
	}
	if c.Markers != "" {
		args = append(args, "-tags", c.Markers)
	}
	args = append(args, c.Extra...)
	args = append(args, outputModeFlags...)
	return args
}

// Clone returns a deep copy.
func (c RunConfig) Clone() RunConfig {
	return RunConfig{
		Paths:   cloneStrings(c.Paths),
		Keyword: c.Keyword,
		Markers: c.Markers,
		Extra:   cloneStrings(c.Extra),
	}
}

// Equal reports whether two configurations describe the same run.
func (c RunConfig) Equal(other RunConfig) bool {
	return c.Keyword == other.Keyword &&
		c.Markers == other.Markers &&
		equalStrings(c.Paths, other.Paths) &&
		equalStrings(c.Extra, other.Extra)
}

// ParseExtra splits every raw --extra value using shell quoting rules, so
// `--extra "-race -timeout 30s"` contributes three arguments.
func ParseExtra(raw []string) ([]string, error) {
	out := []string{}
	for _, value := range raw {
		parts, err := shlex.Split(value)
		if err != nil {
			return nil, fmt.Errorf("parse extra option %q: %w", value, err)
		}
		out = append(out, parts...)
	}
	return out, nil
}

func applyDefaults(cfg *RunConfig) {
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{DefaultTarget}
	}
	if cfg.Extra == nil {
		cfg.Extra = []string{}
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

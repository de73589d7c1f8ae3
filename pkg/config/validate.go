package config

import (
	"fmt"

	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/errors"
)

// Compression formats a target may list
var Compressions = []string{"gzip", "zstd", "lz4"}

// Stats formats a target may select; empty disables stats
var StatsFormats = []string{"", "json", "cbor"}

// Validate checks values that would otherwise fail late in a build
func Validate(cfg *Config) error {
	if _, err := buildenv.ParseMode(cfg.Mode); err != nil {
		return invalid("mode", err.Error())
	}
	if cfg.HashLength < 4 || cfg.HashLength > 64 {
		return invalid("hash_length", fmt.Sprintf("must be between 4 and 64, got %d", cfg.HashLength))
	}
	if cfg.Parallelism < 0 {
		return invalid("parallelism", "cannot be negative")
	}
	if len(cfg.Targets) == 0 {
		return invalid("targets", "no targets configured")
	}

	for _, name := range cfg.TargetNames() {
		target := cfg.Targets[name]
		kind, err := buildenv.ParseTarget(name)
		if err != nil {
			return invalid("targets."+name, err.Error())
		}
		if err := validateTarget(name, kind, target); err != nil {
			return err
		}
	}
	return nil
}

func validateTarget(name string, kind buildenv.Target, t TargetConfig) error {
	key := "targets." + name
	if t.Output == "" {
		return invalid(key+".output", "cannot be empty")
	}
	if t.MaxChunks < 0 {
		return invalid(key+".max_chunks", "cannot be negative")
	}
	if kind == buildenv.TargetServer && t.MaxChunks != 1 {
		return invalid(key+".max_chunks", fmt.Sprintf("the server target emits exactly one chunk, got %d", t.MaxChunks))
	}
	if t.Filename == "" {
		return invalid(key+".filename", "cannot be empty")
	}
	if !contains(StatsFormats, t.Stats) {
		return invalid(key+".stats", fmt.Sprintf("unknown format %q", t.Stats))
	}
	for _, c := range t.Compress {
		if !contains(Compressions, c) {
			return invalid(key+".compress", fmt.Sprintf("unknown compression %q", c))
		}
	}
	if len(t.Entries) == 0 {
		return invalid(key+".entries", "at least one entry is required")
	}

	seen := make(map[string]bool, len(t.Entries))
	for i, e := range t.Entries {
		if e.Name == "" {
			return invalid(fmt.Sprintf("%s.entries[%d].name", key, i), "cannot be empty")
		}
		if seen[e.Name] {
			return invalid(fmt.Sprintf("%s.entries[%d].name", key, i), fmt.Sprintf("duplicate entry %q", e.Name))
		}
		seen[e.Name] = true
		for mode := range e.Modes {
			if _, err := buildenv.ParseMode(mode); err != nil {
				return invalid(fmt.Sprintf("%s.entries[%d].modes", key, i), err.Error())
			}
		}
	}
	return nil
}

func invalid(key, msg string) error {
	return errors.Newf(errors.ErrConfigValid, "invalid configuration: %s %s", key, msg).
		WithDetail("key", key)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

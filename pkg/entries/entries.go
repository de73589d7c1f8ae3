// Package entries selects the entry modules of a build.
//
// Each configured entry lists its candidates. Resolution takes the first
// "when" override whose flag equals the given value, then the candidate for
// the build's mode, then the explicit default. Nothing else is consulted, so
// the result is a pure function of the environment and the configuration.
package entries

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/config"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/matchers"
)

// Entry is one selected entry module
type Entry struct {
	Name string
	// Path is the normalized source path relative to the source root
	Path string
	// Reason records which candidate was selected
	Reason string
}

// EntrySet is an immutable set of entries ordered by name
type EntrySet struct {
	entries []Entry
}

// NewEntrySet builds a set, sorting by name and rejecting duplicates
func NewEntrySet(list []Entry) (EntrySet, error) {
	sorted := append([]Entry(nil), list...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Name == sorted[i-1].Name {
			return EntrySet{}, errors.Newf(errors.ErrInvalidInput, "duplicate entry '%s'", sorted[i].Name)
		}
	}
	return EntrySet{entries: sorted}, nil
}

// Len returns the number of entries
func (s EntrySet) Len() int { return len(s.entries) }

// All returns the entries in name order
func (s EntrySet) All() []Entry { return append([]Entry(nil), s.entries...) }

// Names returns the entry names in order
func (s EntrySet) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Get returns the entry with the given name
func (s EntrySet) Get(name string) (Entry, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Resolve selects one module per configured entry
func Resolve(env buildenv.Context, cfg []config.EntryConfig) (EntrySet, error) {
	logger := logging.GetLogger("entries")

	if len(cfg) == 0 {
		return EntrySet{}, errors.Newf(errors.ErrEntryUnresolved, "no entries configured for target %s", env.Target())
	}

	list := make([]Entry, 0, len(cfg))
	for _, ec := range cfg {
		entry, err := resolveOne(env, ec)
		if err != nil {
			return EntrySet{}, err
		}
		logger.Debug().
			Str("entry", entry.Name).
			Str("path", entry.Path).
			Str("reason", entry.Reason).
			Msg("Entry resolved")
		list = append(list, entry)
	}
	return NewEntrySet(list)
}

func resolveOne(env buildenv.Context, ec config.EntryConfig) (Entry, error) {
	for _, w := range ec.When {
		if v, ok := env.Flag(w.Flag); ok && v == w.Equals {
			return Entry{
				Name:   ec.Name,
				Path:   matchers.Normalize(w.Path),
				Reason: fmt.Sprintf("when %s=%s", w.Flag, w.Equals),
			}, nil
		}
	}

	keys := make([]string, 0, len(ec.Modes))
	for key := range ec.Modes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		p := ec.Modes[key]
		mode, err := buildenv.ParseMode(key)
		if err != nil {
			return Entry{}, errors.Wrapf(err, errors.ErrConfigValid, "entry '%s'", ec.Name)
		}
		if mode == env.Mode() {
			return Entry{Name: ec.Name, Path: matchers.Normalize(p), Reason: "mode " + string(mode)}, nil
		}
	}

	if ec.Default != "" {
		return Entry{Name: ec.Name, Path: matchers.Normalize(ec.Default), Reason: "default"}, nil
	}

	return Entry{}, errors.Newf(errors.ErrEntryUnresolved,
		"entry '%s' has no candidate for mode %s and no default", ec.Name, env.Mode()).
		WithDetail("entry", ec.Name).
		WithDetail("mode", string(env.Mode()))
}

package commands

import (
	"github.com/arthur-debert/assetpipe/pkg/manifest"
)

// ResolveOptions holds options for the resolve command
type ResolveOptions struct {
	// Manifest is the manifest file or the output root holding it
	Manifest string
	Names    []string
	// URL prefixes paths with the manifest's public path
	URL bool
}

// ResolveResult maps logical names to their current output
type ResolveResult struct {
	Found   map[string]string
	Missing []string
}

// Resolve looks logical names up in a written manifest. Without names it
// returns every entry.
func Resolve(opts ResolveOptions) (*ResolveResult, error) {
	m, err := manifest.Load(opts.Manifest)
	if err != nil {
		return nil, err
	}

	names := opts.Names
	if len(names) == 0 {
		names = m.LogicalNames()
	}

	result := &ResolveResult{Found: make(map[string]string)}
	for _, name := range names {
		lookup := m.Resolve
		if opts.URL {
			lookup = m.URL
		}
		if p, ok := lookup(name); ok {
			result.Found[name] = p
		} else {
			result.Missing = append(result.Missing, name)
		}
	}
	return result, nil
}

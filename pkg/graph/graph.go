package graph

import (
	"context"
	"io/fs"
	"sort"

	"github.com/arthur-debert/assetpipe/pkg/entries"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/rs/zerolog"
)

// Ref is a resolved reference from one module to another
type Ref struct {
	// Spec is the specifier as written
	Spec string
	Kind RefKind
	// Path is the referenced source path; empty for external references
	Path string
	// External marks package references, which are never bundled
	External bool
	// Package is the package an external reference names
	Package string
	// Declared reports whether the package is a configured external
	Declared bool
}

// Node is a discovered source file
type Node struct {
	Path    string
	Content []byte
	Refs    []Ref
}

// Options configures discovery
type Options struct {
	// Extensions are tried, in order, for specifiers without an extension
	Extensions []string
	// Externals are package names that are provided at runtime
	Externals []string
	// Aliases replace the package of a bare import. Values starting with
	// "./" or "/" resolve from the source root, others stay bare.
	Aliases map[string]string
}

// Graph is the set of modules reachable from a build's entries
type Graph struct {
	nodes   map[string]*Node
	entries []entries.Entry
	reach   map[string][]string
}

// Discover reads every module reachable from the entries of set
func Discover(ctx context.Context, fsys fs.FS, set entries.EntrySet, opts Options) (*Graph, error) {
	logger := logging.GetLogger("graph")
	done := logging.LogOperationStart(logger, "discover")
	defer done()

	d := &discoverer{
		fsys:   fsys,
		logger: logger,
		res:    &resolver{fsys: fsys, extensions: opts.Extensions, externals: make(map[string]bool), aliases: opts.Aliases},
		g: &Graph{
			nodes:   make(map[string]*Node),
			entries: set.All(),
			reach:   make(map[string][]string),
		},
		warned: make(map[string]bool),
	}
	for _, e := range opts.Externals {
		d.res.externals[e] = true
	}

	for _, entry := range d.g.entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entryPath, ok := d.res.find(entry.Path)
		if !ok {
			return nil, errors.Newf(errors.ErrEntryMissing, "entry '%s' points to missing file %s", entry.Name, entry.Path).
				WithDetail("entry", entry.Name).
				WithDetail("path", entry.Path)
		}

		var order []string
		visited := make(map[string]bool)
		if err := d.visit(ctx, entryPath, visited, &order); err != nil {
			return nil, err
		}
		d.g.reach[entry.Name] = order

		logger.Debug().
			Str("entry", entry.Name).
			Str("path", entryPath).
			Int("modules", len(order)).
			Msg("Entry discovered")
	}

	return d.g, nil
}

type discoverer struct {
	fsys   fs.FS
	res    *resolver
	g      *Graph
	logger zerolog.Logger
	warned map[string]bool
}

// visit walks depth first and appends modules in post-order, so every
// module comes after the modules it references
func (d *discoverer) visit(ctx context.Context, p string, visited map[string]bool, order *[]string) error {
	if visited[p] {
		return nil
	}
	visited[p] = true

	node, err := d.load(p)
	if err != nil {
		return err
	}

	for _, ref := range node.Refs {
		if ref.External {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.visit(ctx, ref.Path, visited, order); err != nil {
			return err
		}
	}

	*order = append(*order, p)
	return nil
}

// load reads and scans a module once per build
func (d *discoverer) load(p string) (*Node, error) {
	if node, ok := d.g.nodes[p]; ok {
		return node, nil
	}

	content, err := fs.ReadFile(d.fsys, p)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", p).WithDetail("path", p)
	}

	node := &Node{Path: p, Content: content}
	for _, raw := range scanRefs(p, content) {
		if isRemote(raw.Spec) {
			continue
		}
		ref, err := d.res.resolve(p, raw)
		if err != nil {
			return nil, err
		}
		if ref.External && !ref.Declared && !d.warned[ref.Package] {
			d.warned[ref.Package] = true
			d.logger.Warn().
				Str("package", ref.Package).
				Str("from", p).
				Msg("Package is not a declared external; it is left to the runtime")
		}
		node.Refs = append(node.Refs, ref)
	}

	d.g.nodes[p] = node
	return node, nil
}

// Entries returns the entries the graph was built from
func (g *Graph) Entries() []entries.Entry {
	return append([]entries.Entry(nil), g.entries...)
}

// Reach returns the modules reachable from an entry, dependencies first
func (g *Graph) Reach(entry string) []string {
	return append([]string(nil), g.reach[entry]...)
}

// Node returns a discovered module
func (g *Graph) Node(p string) (*Node, bool) {
	n, ok := g.nodes[p]
	return n, ok
}

// Paths returns every discovered path in sorted order
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Externals returns the packages referenced but not bundled, sorted
func (g *Graph) Externals() []string {
	seen := make(map[string]bool)
	for _, n := range g.nodes {
		for _, r := range n.Refs {
			if r.External {
				seen[r.Package] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

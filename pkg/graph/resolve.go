package graph

import (
	"io/fs"
	"path"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/errors"
)

// resolver maps specifiers to source paths
type resolver struct {
	fsys       fs.FS
	extensions []string
	externals  map[string]bool
	aliases    map[string]string
}

// isRemote reports specifiers that never refer to a source file
func isRemote(spec string) bool {
	lower := strings.ToLower(spec)
	return strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "#") ||
		strings.Contains(lower, "://")
}

// packageName returns the package a bare specifier names
func packageName(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func stripQuery(spec string) string {
	if i := strings.IndexAny(spec, "?#"); i >= 0 {
		return spec[:i]
	}
	return spec
}

// target computes the unresolved path a specifier points at. Bare script
// specifiers and "~" style references return bare=true.
func target(from, spec string, kind RefKind) (p string, bare bool) {
	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"):
		return path.Join(path.Dir(from), spec), false
	case strings.HasPrefix(spec, "/"):
		return path.Clean(strings.TrimPrefix(spec, "/")), false
	case strings.HasPrefix(spec, "~"):
		return strings.TrimPrefix(spec, "~"), true
	case kind == RefImport:
		return spec, true
	default:
		// Stylesheet references are relative unless marked otherwise.
		return path.Join(path.Dir(from), spec), false
	}
}

// alias rewrites a bare specifier whose package has an alias. The result
// is bare unless the alias points into the source root.
func (r *resolver) alias(spec string) (string, bool) {
	// "@app/util" matches a scoped package alias first, then "@app"
	pkg := packageName(spec)
	repl, ok := r.aliases[pkg]
	if !ok {
		pkg, _, _ = strings.Cut(spec, "/")
		if repl, ok = r.aliases[pkg]; !ok {
			return spec, true
		}
	}
	rest := strings.TrimPrefix(spec, pkg)
	switch {
	case strings.HasPrefix(repl, "./"), strings.HasPrefix(repl, "/"):
		return path.Clean(strings.TrimPrefix(repl, "/")) + rest, false
	default:
		return repl + rest, true
	}
}

// find locates the file for an unresolved path, trying extensions and
// index files
func (r *resolver) find(p string) (string, bool) {
	if p == "" || p == "." || strings.HasPrefix(p, "../") || p == ".." {
		return "", false
	}

	candidates := []string{p}
	for _, ext := range r.extensions {
		candidates = append(candidates, p+ext)
	}
	for _, ext := range r.extensions {
		candidates = append(candidates, path.Join(p, "index"+ext))
	}

	for _, c := range candidates {
		info, err := fs.Stat(r.fsys, c)
		if err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}

// resolve turns a raw reference found in from into a Ref
func (r *resolver) resolve(from string, raw rawRef) (Ref, error) {
	ref := Ref{Spec: raw.Spec, Kind: raw.Kind}
	p, bare := target(from, stripQuery(raw.Spec), raw.Kind)
	if bare && raw.Kind == RefImport {
		p, bare = r.alias(p)
	}
	if bare {
		ref.External = true
		ref.Package = packageName(p)
		ref.Declared = r.externals[ref.Package]
		return ref, nil
	}

	found, ok := r.find(p)
	if !ok {
		return Ref{}, errors.Newf(errors.ErrModuleNotFound, "cannot resolve '%s' from %s", raw.Spec, from).
			WithDetail("spec", raw.Spec).
			WithDetail("from", from)
	}
	ref.Path = found
	return ref, nil
}

package graph

import (
	"sort"

	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
	"github.com/dlclark/regexp2"
)

// RefKind says how a module refers to another
type RefKind string

const (
	// RefImport is a script import, export-from, require or dynamic import
	RefImport RefKind = "import"
	// RefStyleImport is a stylesheet @import
	RefStyleImport RefKind = "style-import"
	// RefURL is a stylesheet url() reference
	RefURL RefKind = "url"
)

var (
	jsStaticImport = regexp2.MustCompile(
		`\b(?:import|export)\s*(?:[\w$*{}\s,]+?\s*from\s*)?(['"])([^'"\r\n]+)\1`, regexp2.ECMAScript)
	jsCallImport = regexp2.MustCompile(
		`\b(?:require|import)\s*\(\s*(['"])([^'"\r\n]+)\1\s*\)`, regexp2.ECMAScript)
	cssImport = regexp2.MustCompile(
		`@import\s+(?:url\(\s*)?(['"]?)([^'"()\s;]+)\1\s*\)?`, regexp2.ECMAScript|regexp2.IgnoreCase)
	cssURL = regexp2.MustCompile(
		`\burl\(\s*(['"]?)([^'"()\s]+)\1\s*\)`, regexp2.ECMAScript|regexp2.IgnoreCase)
)

// rawRef is a specifier found in source text
type rawRef struct {
	Spec  string
	Kind  RefKind
	Index int
	End   int
}

// scanRefs extracts references in source order
func scanRefs(p string, content []byte) []rawRef {
	src := string(content)
	var refs []rawRef

	switch transforms.KindFor(p) {
	case transforms.KindScript:
		refs = append(refs, findAll(jsStaticImport, src, RefImport)...)
		for _, call := range findAll(jsCallImport, src, RefImport) {
			if !overlaps(refs, call) {
				refs = append(refs, call)
			}
		}
	case transforms.KindStyle:
		imports := findAll(cssImport, src, RefStyleImport)
		refs = append(refs, imports...)
		for _, u := range findAll(cssURL, src, RefURL) {
			if !overlaps(imports, u) {
				refs = append(refs, u)
			}
		}
	default:
		return nil
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Index < refs[j].Index })
	return refs
}

func findAll(re *regexp2.Regexp, src string, kind RefKind) []rawRef {
	var out []rawRef
	m, err := re.FindStringMatch(src)
	for err == nil && m != nil {
		spec := m.GroupByNumber(2).String()
		out = append(out, rawRef{Spec: spec, Kind: kind, Index: m.Index, End: m.Index + m.Length})
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		logger := logging.GetLogger("graph.scan")
		logger.Warn().Err(err).Msg("Reference scan stopped early")
	}
	return out
}

func overlaps(refs []rawRef, r rawRef) bool {
	for _, existing := range refs {
		if r.Index < existing.End && existing.Index < r.End {
			return true
		}
	}
	return false
}

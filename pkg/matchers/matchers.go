// Package matchers implements the path predicates rules are built from.
//
// A predicate is a pure function over a normalized, slash-separated path that
// is relative to the source root (for example "src/assets/logo.svg").
//
// # Pattern Syntax
//
//   - `\.svg$` or `/\.svg$/i` - ECMAScript regular expression (default)
//   - `glob:*.png` - glob against the base name (no slash in pattern)
//   - `glob:src/**/*.png` - glob against the full path
//   - `dir:src/app` - path lies inside the directory
//
// Several patterns in one predicate list are OR-ed together.
package matchers

import (
	"path"
	"strings"
	"time"

	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/dlclark/regexp2"
)

const (
	globPrefix = "glob:"
	dirPrefix  = "dir:"

	// matchTimeout bounds a single regular expression evaluation
	matchTimeout = 250 * time.Millisecond
)

// Predicate decides whether a path satisfies a condition
type Predicate interface {
	Match(path string) bool
	String() string
}

// Conditions groups the three predicates a rule is matched with. Test may be
// nil, in which case the conditions form a catch-all.
type Conditions struct {
	Test    Predicate
	Include Predicate
	Exclude Predicate
}

// IsCatchAll reports whether there is no test predicate
func (c Conditions) IsCatchAll() bool { return c.Test == nil }

// Matches reports whether path satisfies the conditions: the test predicate
// holds (or is absent), the include predicate holds (or is absent) and the
// exclude predicate does not hold (or is absent).
func Matches(p string, c Conditions) bool {
	p = Normalize(p)
	if c.Test != nil && !c.Test.Match(p) {
		return false
	}
	if c.Include != nil && !c.Include.Match(p) {
		return false
	}
	if c.Exclude != nil && c.Exclude.Match(p) {
		return false
	}
	return true
}

// Normalize converts a path to the form predicates are evaluated on
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}

// Parse compiles a single pattern
func Parse(pattern string) (Predicate, error) {
	switch {
	case pattern == "":
		return nil, errors.New(errors.ErrPredicateInvalid, "empty pattern")
	case strings.HasPrefix(pattern, globPrefix):
		return newGlob(strings.TrimPrefix(pattern, globPrefix))
	case strings.HasPrefix(pattern, dirPrefix):
		dir := Normalize(strings.TrimPrefix(pattern, dirPrefix))
		return dirPredicate{dir: dir}, nil
	default:
		return newRegex(pattern)
	}
}

// ParseAll compiles a list of patterns into a single any-of predicate.
// An empty list yields a nil predicate (the condition is absent).
func ParseAll(patterns []string) (Predicate, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	if len(patterns) == 1 {
		return Parse(patterns[0])
	}
	preds := make(AnyOf, 0, len(patterns))
	for _, p := range patterns {
		pred, err := Parse(p)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return preds, nil
}

// MustParse is Parse for patterns known at compile time
func MustParse(pattern string) Predicate {
	p, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// AnyOf matches when any member matches
type AnyOf []Predicate

func (a AnyOf) Match(p string) bool {
	for _, pred := range a {
		if pred.Match(p) {
			return true
		}
	}
	return false
}

func (a AnyOf) String() string {
	parts := make([]string, len(a))
	for i, pred := range a {
		parts[i] = pred.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Func adapts a plain function; used by code-defined rules and tests
type Func struct {
	Name string
	Fn   func(path string) bool
}

func (f Func) Match(p string) bool { return f.Fn(p) }
func (f Func) String() string      { return f.Name }

type regexPredicate struct {
	source string
	re     *regexp2.Regexp
}

// newRegex compiles an ECMAScript pattern. The /body/flags form accepts the
// i and m flags.
func newRegex(pattern string) (Predicate, error) {
	body := pattern
	opts := regexp2.RegexOptions(regexp2.ECMAScript)

	if len(pattern) > 1 && strings.HasPrefix(pattern, "/") {
		if end := strings.LastIndex(pattern, "/"); end > 0 {
			body = pattern[1:end]
			for _, flag := range pattern[end+1:] {
				switch flag {
				case 'i':
					opts |= regexp2.IgnoreCase
				case 'm':
					opts |= regexp2.Multiline
				default:
					return nil, errors.Newf(errors.ErrPredicateInvalid,
						"unsupported regex flag %q in %s", flag, pattern)
				}
			}
		}
	}

	re, err := regexp2.Compile(body, opts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPredicateInvalid, "invalid pattern %s", pattern)
	}
	re.MatchTimeout = matchTimeout
	return regexPredicate{source: pattern, re: re}, nil
}

func (r regexPredicate) Match(p string) bool {
	ok, err := r.re.MatchString(p)
	if err != nil {
		logger := logging.GetLogger("matchers")
		logger.Warn().Err(err).Str("pattern", r.source).Str("path", p).Msg("Pattern evaluation failed")
		return false
	}
	return ok
}

func (r regexPredicate) String() string { return r.source }

type globPredicate struct {
	pattern  string
	baseOnly bool
}

func newGlob(pattern string) (Predicate, error) {
	if pattern == "" {
		return nil, errors.New(errors.ErrPredicateInvalid, "empty glob pattern")
	}
	// Validate syntax once; path.Match reports ErrBadPattern lazily otherwise
	if _, err := path.Match(strings.ReplaceAll(pattern, "**", "*"), ""); err != nil {
		return nil, errors.Wrapf(err, errors.ErrPredicateInvalid, "invalid glob %s", pattern)
	}
	return globPredicate{pattern: pattern, baseOnly: !strings.Contains(pattern, "/")}, nil
}

func (g globPredicate) Match(p string) bool {
	if g.baseOnly {
		ok, _ := path.Match(g.pattern, path.Base(p))
		return ok
	}
	return matchDoubleStar(g.pattern, p)
}

func (g globPredicate) String() string { return globPrefix + g.pattern }

// matchDoubleStar matches a slash pattern where a "**" segment stands for
// zero or more path segments.
func matchDoubleStar(pattern, p string) bool {
	patSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(p, "/")
	return matchSegments(patSegs, pathSegs)
}

func matchSegments(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, _ := path.Match(pat[0], segs[0]); !ok {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

type dirPredicate struct {
	dir string
}

func (d dirPredicate) Match(p string) bool {
	if d.dir == "" {
		return true
	}
	return p == d.dir || strings.HasPrefix(p, d.dir+"/")
}

func (d dirPredicate) String() string { return dirPrefix + d.dir }

// Package buildenv holds the immutable build-time parameters a pipeline run is
// parameterized by: mode, target, public path and free-form flags.
package buildenv

import (
	"sort"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/errors"
)

// Mode is the build mode
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
	ModeTest        Mode = "test"
)

// Target is the runtime the bundle is built for
type Target string

const (
	TargetBrowser Target = "browser"
	TargetServer  Target = "server"
)

// Modes lists every valid mode
func Modes() []Mode { return []Mode{ModeDevelopment, ModeProduction, ModeTest} }

// Targets lists every valid target
func Targets() []Target { return []Target{TargetBrowser, TargetServer} }

// ParseMode validates a mode name
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDevelopment, ModeProduction, ModeTest:
		return m, nil
	case "dev":
		return ModeDevelopment, nil
	case "prod":
		return ModeProduction, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown build mode %q", s).
		WithDetail("valid", Modes())
}

// ParseTarget validates a target name
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetBrowser, TargetServer:
		return t, nil
	case "web":
		return TargetBrowser, nil
	case "node":
		return TargetServer, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown build target %q", s).
		WithDetail("valid", Targets())
}

// Context is a snapshot of the build parameters. It is created once per build
// and never changes; all accessors return copies.
type Context struct {
	mode       Mode
	target     Target
	publicPath string
	flags      map[string]string
}

// New creates a Context. The flags map is copied. An empty public path
// becomes "/", and a trailing slash is always present.
func New(mode Mode, target Target, publicPath string, flags map[string]string) (Context, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Context{}, err
	}
	if _, err := ParseTarget(string(target)); err != nil {
		return Context{}, err
	}

	copied := make(map[string]string, len(flags))
	for k, v := range flags {
		copied[k] = v
	}

	return Context{
		mode:       mode,
		target:     target,
		publicPath: NormalizePublicPath(publicPath),
		flags:      copied,
	}, nil
}

// NormalizePublicPath makes sure a public path ends in a slash
func NormalizePublicPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasSuffix(p, "/") {
		return p + "/"
	}
	return p
}

func (c Context) Mode() Mode         { return c.mode }
func (c Context) Target() Target     { return c.target }
func (c Context) PublicPath() string { return c.publicPath }

// IsProduction reports whether optimized output is wanted
func (c Context) IsProduction() bool { return c.mode == ModeProduction }

// Flag returns a single extra flag
func (c Context) Flag(name string) (string, bool) {
	v, ok := c.flags[name]
	return v, ok
}

// Flags returns a copy of the extra flags
func (c Context) Flags() map[string]string {
	out := make(map[string]string, len(c.flags))
	for k, v := range c.flags {
		out[k] = v
	}
	return out
}

// FlagNames returns the flag names in sorted order
func (c Context) FlagNames() []string {
	names := make([]string, 0, len(c.flags))
	for k := range c.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String renders the context for logs
func (c Context) String() string {
	return string(c.mode) + "/" + string(c.target)
}

// Package transforms defines the transform interface, the registry transforms
// are looked up in, and the built-in transforms.
//
// A transform receives a Module and returns a new one. Transforms never keep
// state between calls, so one instance serves every file and every worker.
package transforms

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/rs/zerolog"
)

// Kind says how a module ends up in the output
type Kind string

const (
	// KindScript modules are concatenated into the chunk's script file
	KindScript Kind = "script"
	// KindStyle modules are concatenated into the chunk's style file
	KindStyle Kind = "style"
	// KindAsset modules are emitted as standalone files
	KindAsset Kind = "asset"
)

// Module is a file travelling through a chain
type Module struct {
	// Path is the normalized source path relative to the source root
	Path string
	// Content is the current content
	Content []byte
	// Kind is the current kind
	Kind Kind
	// Ext is the output extension without the dot
	Ext string
	// NameTemplate overrides the asset naming template for KindAsset modules
	NameTemplate string
}

// NewModule creates a module with kind and extension derived from the path
func NewModule(p string, content []byte) Module {
	return Module{
		Path:    p,
		Content: content,
		Kind:    KindFor(p),
		Ext:     strings.TrimPrefix(path.Ext(p), "."),
	}
}

// KindFor returns the initial kind for a source path
func KindFor(p string) Kind {
	switch strings.ToLower(path.Ext(p)) {
	case ".js", ".mjs", ".cjs", ".jsx", ".ts", ".tsx":
		return KindScript
	case ".css", ".scss", ".sass", ".less":
		return KindStyle
	default:
		return KindAsset
	}
}

// Context is what a transform gets besides the module
type Context struct {
	Env     buildenv.Context
	Options Options
	Logger  zerolog.Logger
}

// Transform is an opaque content transformation
type Transform interface {
	// Name is the identifier rules refer to
	Name() string
	// Options lists the recognized option keys
	Options() []string
	// Apply transforms one module
	Apply(ctx Context, in Module) (Module, error)
}

// Ref is a reference to a transform from a rule, with its configuration
type Ref struct {
	Name    string
	Options Options
}

// String renders a ref for logs and the explain command
func (r Ref) String() string {
	if len(r.Options) == 0 {
		return r.Name
	}
	keys := r.Options.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, r.Options[k])
	}
	return r.Name + "{" + strings.Join(parts, ",") + "}"
}

// Names returns the transform names of a chain
func Names(chain []Ref) []string {
	names := make([]string, len(chain))
	for i, r := range chain {
		names[i] = r.Name
	}
	return names
}

// Options holds a transform's configuration. Values come from TOML, YAML or
// code, so the getters accept the numeric and string forms those produce.
type Options map[string]interface{}

// Keys returns the option keys in sorted order
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bool returns a boolean option
func (o Options) Bool(key string, def bool) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Int returns an integer option
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// String returns a string option
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Strings returns a string list option
func (o Options) Strings(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(v, ",")
	}
	return nil
}

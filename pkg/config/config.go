package config

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Config is the complete assetpipe configuration
type Config struct {
	SourceRoot        string                  `koanf:"source_root" toml:"source_root" yaml:"source_root"`
	Mode              string                  `koanf:"mode" toml:"mode" yaml:"mode"`
	Parallelism       int                     `koanf:"parallelism" toml:"parallelism" yaml:"parallelism"`
	HashLength        int                     `koanf:"hash_length" toml:"hash_length" yaml:"hash_length"`
	ResolveExtensions []string                `koanf:"resolve_extensions" toml:"resolve_extensions" yaml:"resolve_extensions"`
	Flags             map[string]string       `koanf:"flags" toml:"flags" yaml:"flags"`
	Rules             []RuleConfig            `koanf:"rules" toml:"rules" yaml:"rules"`
	Targets           map[string]TargetConfig `koanf:"targets" toml:"targets" yaml:"targets"`

	// File is the project file that was loaded, empty when none was found
	File string `koanf:"-" toml:"-" yaml:"-"`
	// BaseDir anchors relative paths: the project file's directory, or the
	// directory that was searched
	BaseDir string `koanf:"-" toml:"-" yaml:"-"`
}

// Patterns is a list of predicate patterns. A single string decodes as a
// one-element list and is never split on commas, since regexes use them.
type Patterns []string

// RuleConfig is a rule as written in configuration
type RuleConfig struct {
	Name    string      `koanf:"name" toml:"name" yaml:"name"`
	Group   string      `koanf:"group" toml:"group,omitempty" yaml:"group,omitempty"`
	Test    Patterns    `koanf:"test" toml:"test,omitempty" yaml:"test,omitempty"`
	Include Patterns    `koanf:"include" toml:"include,omitempty" yaml:"include,omitempty"`
	Exclude Patterns    `koanf:"exclude" toml:"exclude,omitempty" yaml:"exclude,omitempty"`
	Chain   []RefConfig `koanf:"chain" toml:"chain" yaml:"chain"`
	Modes   []string    `koanf:"modes" toml:"modes,omitempty" yaml:"modes,omitempty"`
	Targets []string    `koanf:"targets" toml:"targets,omitempty" yaml:"targets,omitempty"`
}

// RefConfig names a transform and its options
type RefConfig struct {
	Name    string                 `koanf:"name" toml:"name" yaml:"name"`
	Options map[string]interface{} `koanf:"options" toml:"options,omitempty" yaml:"options,omitempty"`
}

// TargetConfig configures one build target
type TargetConfig struct {
	Output          string   `koanf:"output" toml:"output" yaml:"output"`
	PublicPath      string   `koanf:"public_path" toml:"public_path" yaml:"public_path"`
	MaxChunks       int      `koanf:"max_chunks" toml:"max_chunks" yaml:"max_chunks"`
	SplitShared     bool     `koanf:"split_shared" toml:"split_shared" yaml:"split_shared"`
	SharedChunkName string   `koanf:"shared_chunk_name" toml:"shared_chunk_name" yaml:"shared_chunk_name"`
	Filename        string   `koanf:"filename" toml:"filename" yaml:"filename"`
	CSSFilename     string   `koanf:"css_filename" toml:"css_filename" yaml:"css_filename"`
	AssetFilename   string   `koanf:"asset_filename" toml:"asset_filename" yaml:"asset_filename"`
	Externals       []string `koanf:"externals" toml:"externals" yaml:"externals"`
	// Aliases rewrite bare import specifiers by package name. A value
	// starting with "./" or "/" points into the source root.
	Aliases         map[string]string `koanf:"aliases" toml:"aliases" yaml:"aliases"`
	Compress        []string          `koanf:"compress" toml:"compress" yaml:"compress"`
	CompressMinSize int               `koanf:"compress_min_size" toml:"compress_min_size" yaml:"compress_min_size"`
	Stats           string            `koanf:"stats" toml:"stats" yaml:"stats"`
	Entries         []EntryConfig     `koanf:"entries" toml:"entries" yaml:"entries"`
}

// EntryConfig is a named entry point and its candidates
type EntryConfig struct {
	Name    string            `koanf:"name" toml:"name" yaml:"name"`
	Default string            `koanf:"default" toml:"default,omitempty" yaml:"default,omitempty"`
	Modes   map[string]string `koanf:"modes" toml:"modes,omitempty" yaml:"modes,omitempty"`
	When    []WhenConfig      `koanf:"when" toml:"when,omitempty" yaml:"when,omitempty"`
}

// WhenConfig selects Path when the flag equals the value
type WhenConfig struct {
	Flag   string `koanf:"flag" toml:"flag" yaml:"flag"`
	Equals string `koanf:"equals" toml:"equals" yaml:"equals"`
	Path   string `koanf:"path" toml:"path" yaml:"path"`
}

// Target returns the named target's configuration
func (c *Config) Target(name string) (TargetConfig, error) {
	t, ok := c.Targets[name]
	if !ok {
		return TargetConfig{}, fmt.Errorf("target %q is not configured", name)
	}
	return t, nil
}

// TargetNames returns the configured target names in sorted order
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path resolves p against BaseDir unless it is absolute
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// SourcePath is the absolute or BaseDir-relative source root
func (c *Config) SourcePath() string {
	return c.Path(c.SourceRoot)
}

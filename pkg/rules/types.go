package rules

import (
	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/matchers"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
)

// Rule maps the paths its conditions match to a transform chain
type Rule struct {
	// Name identifies the rule in logs and explain output
	Name string
	// Group is the exclusive group id; empty means standalone
	Group string
	// Conditions decide whether a path matches
	Conditions matchers.Conditions
	// Chain is applied in order
	Chain []transforms.Ref
	// Modes limits the rule to these modes; empty means all
	Modes []buildenv.Mode
	// Targets limits the rule to these targets; empty means all
	Targets []buildenv.Target
}

// Standalone reports whether the rule belongs to no exclusive group
func (r Rule) Standalone() bool { return r.Group == "" }

// AppliesTo reports whether the rule is active for the environment
func (r Rule) AppliesTo(env buildenv.Context) bool {
	if len(r.Modes) > 0 {
		found := false
		for _, m := range r.Modes {
			if m == env.Mode() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(r.Targets) > 0 {
		for _, t := range r.Targets {
			if t == env.Target() {
				return true
			}
		}
		return false
	}
	return true
}

// Resolution is the outcome of resolving one path
type Resolution struct {
	// Path is the normalized path
	Path string
	// Chain is the concatenated transform chain
	Chain []transforms.Ref
	// Rules names the contributing rules, in contribution order
	Rules []string
}

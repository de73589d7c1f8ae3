package rules

import (
	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/matchers"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
	"github.com/rs/zerolog"
)

// RuleSet is a validated, immutable set of rules
type RuleSet struct {
	rules      []Rule
	groups     []group
	standalone []int
	logger     zerolog.Logger
}

type group struct {
	id      string
	members []int
}

// Select returns the rules that apply to env, preserving order
func Select(rules []Rule, env buildenv.Context) []Rule {
	selected := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.AppliesTo(env) {
			selected = append(selected, r)
		}
	}
	return selected
}

// NewRuleSet validates rules and builds the set. When registry is not nil
// every chain step must name a registered transform and use only the options
// that transform recognizes.
func NewRuleSet(rules []Rule, registry *transforms.Registry) (*RuleSet, error) {
	rs := &RuleSet{
		rules:  make([]Rule, len(rules)),
		logger: logging.GetLogger("rules.resolver"),
	}

	names := make(map[string]bool, len(rules))
	groupIndex := make(map[string]int)

	for i, r := range rules {
		if r.Name == "" {
			return nil, errors.Newf(errors.ErrRuleInvalid, "rule %d has no name", i).WithDetail("index", i)
		}
		if names[r.Name] {
			return nil, errors.Newf(errors.ErrRuleInvalid, "duplicate rule name '%s'", r.Name).WithDetail("rule", r.Name)
		}
		names[r.Name] = true

		if len(r.Chain) == 0 {
			return nil, errors.Newf(errors.ErrRuleInvalid, "rule '%s' has an empty chain", r.Name).WithDetail("rule", r.Name)
		}
		if registry != nil {
			for _, ref := range r.Chain {
				if err := registry.Validate(ref); err != nil {
					return nil, errors.Wrapf(err, errors.ErrRuleInvalid, "rule '%s'", r.Name).WithDetail("rule", r.Name)
				}
			}
		}

		// Copy so later changes to the caller's slices cannot reach the set.
		r.Chain = append([]transforms.Ref(nil), r.Chain...)
		r.Modes = append([]buildenv.Mode(nil), r.Modes...)
		r.Targets = append([]buildenv.Target(nil), r.Targets...)
		rs.rules[i] = r

		if r.Standalone() {
			rs.standalone = append(rs.standalone, i)
			continue
		}

		gi, ok := groupIndex[r.Group]
		if !ok {
			gi = len(rs.groups)
			groupIndex[r.Group] = gi
			rs.groups = append(rs.groups, group{id: r.Group})
		}
		if members := rs.groups[gi].members; len(members) > 0 {
			if prev := rs.rules[members[len(members)-1]]; prev.Conditions.IsCatchAll() {
				return nil, errors.Newf(errors.ErrRuleInvalid,
					"catch-all rule '%s' must be the last rule of group '%s', but '%s' follows it",
					prev.Name, r.Group, r.Name).
					WithDetail("rule", prev.Name).
					WithDetail("group", r.Group)
			}
		}
		rs.groups[gi].members = append(rs.groups[gi].members, i)
	}

	return rs, nil
}

// Rules returns a copy of the rules in declaration order
func (rs *RuleSet) Rules() []Rule {
	return append([]Rule(nil), rs.rules...)
}

// Groups returns the exclusive group ids in order of first declaration
func (rs *RuleSet) Groups() []string {
	ids := make([]string, len(rs.groups))
	for i, g := range rs.groups {
		ids[i] = g.id
	}
	return ids
}

// HasCatchAll reports whether some rule matches any path its include and
// exclude predicates allow
func (rs *RuleSet) HasCatchAll() bool {
	for _, r := range rs.rules {
		if r.Conditions.IsCatchAll() {
			return true
		}
	}
	return false
}

// ResolveChains returns the ordered transform chain for path. A path that
// matches no rule fails with ErrUnmatchedAsset.
func (rs *RuleSet) ResolveChains(path string) ([]transforms.Ref, error) {
	res, err := rs.Resolve(path)
	if err != nil {
		return nil, err
	}
	return res.Chain, nil
}

// Resolve is ResolveChains plus the names of the contributing rules
func (rs *RuleSet) Resolve(path string) (Resolution, error) {
	p := matchers.Normalize(path)
	res := Resolution{Path: p}

	for _, g := range rs.groups {
		for _, idx := range g.members {
			rule := rs.rules[idx]
			if matchers.Matches(p, rule.Conditions) {
				res.Chain = append(res.Chain, rule.Chain...)
				res.Rules = append(res.Rules, rule.Name)
				rs.logger.Trace().
					Str("path", p).
					Str("group", g.id).
					Str("rule", rule.Name).
					Msg("Group matched")
				break // First match wins
			}
		}
	}

	for _, idx := range rs.standalone {
		rule := rs.rules[idx]
		if matchers.Matches(p, rule.Conditions) {
			res.Chain = append(res.Chain, rule.Chain...)
			res.Rules = append(res.Rules, rule.Name)
			rs.logger.Trace().
				Str("path", p).
				Str("rule", rule.Name).
				Msg("Standalone rule matched")
		}
	}

	if len(res.Rules) == 0 {
		return Resolution{}, errors.Newf(errors.ErrUnmatchedAsset, "no rule matches %s", p).
			WithDetail("path", p)
	}
	return res, nil
}

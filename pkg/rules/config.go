package rules

import (
	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/config"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/matchers"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
)

// FromConfig converts configured rules, parsing their predicates
func FromConfig(cfgRules []config.RuleConfig) ([]Rule, error) {
	out := make([]Rule, 0, len(cfgRules))
	for i, rc := range cfgRules {
		r, err := fromConfig(rc)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrRuleInvalid, "rule %d (%s)", i, rc.Name).
				WithDetail("rule", rc.Name)
		}
		out = append(out, r)
	}
	return out, nil
}

func fromConfig(rc config.RuleConfig) (Rule, error) {
	r := Rule{Name: rc.Name, Group: rc.Group}

	var err error
	if r.Conditions.Test, err = matchers.ParseAll(rc.Test); err != nil {
		return Rule{}, err
	}
	if r.Conditions.Include, err = matchers.ParseAll(rc.Include); err != nil {
		return Rule{}, err
	}
	if r.Conditions.Exclude, err = matchers.ParseAll(rc.Exclude); err != nil {
		return Rule{}, err
	}

	for _, ref := range rc.Chain {
		r.Chain = append(r.Chain, transforms.Ref{Name: ref.Name, Options: transforms.Options(ref.Options)})
	}
	for _, m := range rc.Modes {
		mode, err := buildenv.ParseMode(m)
		if err != nil {
			return Rule{}, err
		}
		r.Modes = append(r.Modes, mode)
	}
	for _, t := range rc.Targets {
		target, err := buildenv.ParseTarget(t)
		if err != nil {
			return Rule{}, err
		}
		r.Targets = append(r.Targets, target)
	}
	return r, nil
}

// Load converts configured rules, selects those active for env and builds
// the rule set
func Load(cfgRules []config.RuleConfig, env buildenv.Context, registry *transforms.Registry) (*RuleSet, error) {
	all, err := FromConfig(cfgRules)
	if err != nil {
		return nil, err
	}
	return NewRuleSet(Select(all, env), registry)
}

package core

import (
	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/config"
	"github.com/arthur-debert/assetpipe/pkg/entries"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/rules"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
)

// PlanOptions selects what to build
type PlanOptions struct {
	Config *config.Config
	// Target names a configured target
	Target string
	// Mode overrides the configured mode when set
	Mode string
	// Flags are merged over the configured flags
	Flags map[string]string
	// Registry defaults to transforms.DefaultRegistry()
	Registry *transforms.Registry
}

// Plan is the resolved, environment-specific setup of one target
type Plan struct {
	Config   *config.Config
	Target   config.TargetConfig
	Env      buildenv.Context
	Entries  entries.EntrySet
	Rules    *rules.RuleSet
	Registry *transforms.Registry
}

// NewPlan resolves the environment, entries and rules of a target
func NewPlan(opts PlanOptions) (*Plan, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no configuration")
	}

	tc, err := cfg.Target(opts.Target)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "unknown target").
			WithDetail("target", opts.Target)
	}

	env, err := EnvFromConfig(cfg, opts.Target, opts.Mode, opts.Flags)
	if err != nil {
		return nil, err
	}

	set, err := entries.Resolve(env, tc.Entries)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = transforms.DefaultRegistry()
	}
	rs, err := rules.Load(cfg.Rules, env, registry)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Config:   cfg,
		Target:   tc,
		Env:      env,
		Entries:  set,
		Rules:    rs,
		Registry: registry,
	}, nil
}

// EnvFromConfig builds the environment context of a target. mode and flags
// take precedence over the configuration.
func EnvFromConfig(cfg *config.Config, target, mode string, flags map[string]string) (buildenv.Context, error) {
	tc, err := cfg.Target(target)
	if err != nil {
		return buildenv.Context{}, errors.Wrap(err, errors.ErrConfigValid, "unknown target").
			WithDetail("target", target)
	}
	kind, err := buildenv.ParseTarget(target)
	if err != nil {
		return buildenv.Context{}, err
	}

	if mode == "" {
		mode = cfg.Mode
	}
	m, err := buildenv.ParseMode(mode)
	if err != nil {
		return buildenv.Context{}, err
	}

	merged := make(map[string]string, len(cfg.Flags)+len(flags))
	for k, v := range cfg.Flags {
		merged[k] = v
	}
	for k, v := range flags {
		merged[k] = v
	}
	return buildenv.New(m, kind, tc.PublicPath, merged)
}

package commands

import (
	"context"

	"github.com/arthur-debert/assetpipe/pkg/config"
	"github.com/arthur-debert/assetpipe/pkg/core"
	"github.com/arthur-debert/assetpipe/pkg/logging"
)

// TargetAll builds every configured target
const TargetAll = "all"

// BuildOptions holds options for the build command
type BuildOptions struct {
	Config *config.Config
	// Targets are built one after the other; "all" expands to every target
	Targets []string
	Mode    string
	Flags   map[string]string
	DryRun  bool
}

// Build builds each requested target in turn and stops at the first failure
func Build(ctx context.Context, opts BuildOptions) ([]*core.BuildResult, error) {
	logger := logging.GetLogger("commands.build")

	targets := ExpandTargets(opts.Config, opts.Targets)
	logger.Debug().Strs("targets", targets).Msg("Building targets")

	results := make([]*core.BuildResult, 0, len(targets))
	for _, target := range targets {
		res, err := core.Build(ctx, core.BuildOptions{
			PlanOptions: core.PlanOptions{
				Config: opts.Config,
				Target: target,
				Mode:   opts.Mode,
				Flags:  opts.Flags,
			},
			DryRun: opts.DryRun,
		})
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// ExpandTargets replaces "all" (or nothing) with every configured target
func ExpandTargets(cfg *config.Config, targets []string) []string {
	if len(targets) == 0 {
		return cfg.TargetNames()
	}
	var out []string
	seen := make(map[string]bool)
	for _, t := range targets {
		names := []string{t}
		if t == TargetAll {
			names = cfg.TargetNames()
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

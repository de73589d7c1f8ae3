package transforms

import (
	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
)

// Runner applies chains of transform refs to modules
type Runner struct {
	registry *Registry
	env      buildenv.Context
}

// NewRunner creates a runner bound to a registry and an environment
func NewRunner(registry *Registry, env buildenv.Context) *Runner {
	return &Runner{registry: registry, env: env}
}

// Run applies chain to in, strictly in order; each step receives the previous
// step's output. An empty chain passes the module through unchanged.
func (r *Runner) Run(chain []Ref, in Module) (Module, error) {
	logger := logging.GetLogger("transforms.runner")
	current := in

	for step, ref := range chain {
		t, err := r.registry.Get(ref.Name)
		if err != nil {
			return Module{}, err
		}

		ctx := Context{
			Env:     r.env,
			Options: ref.Options,
			Logger:  logger.With().Str("transform", ref.Name).Str("path", in.Path).Logger(),
		}
		out, err := t.Apply(ctx, current)
		if err != nil {
			return Module{}, errors.Wrapf(err, errors.ErrTransformFailure,
				"transform '%s' failed on %s", ref.Name, in.Path).
				WithDetail("path", in.Path).
				WithDetail("transform", ref.Name).
				WithDetail("step", step)
		}
		if out.Path == "" {
			out.Path = current.Path
		}

		logger.Trace().
			Str("path", in.Path).
			Str("transform", ref.Name).
			Str("kind", string(out.Kind)).
			Int("bytes", len(out.Content)).
			Msg("Transform applied")
		current = out
	}

	return current, nil
}

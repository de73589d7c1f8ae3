package commands

import (
	"io/fs"
	"os"
	"strings"

	"github.com/arthur-debert/assetpipe/pkg/core"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/matchers"
	"github.com/arthur-debert/assetpipe/pkg/ui"
)

// ExplainOptions holds options for the explain command
type ExplainOptions struct {
	core.PlanOptions
	// Paths are source paths relative to the source root
	Paths []string
	// All explains every file under the source root when Paths is empty
	All bool
	// Source overrides the configured source root
	Source fs.FS
}

// Explain resolves the transform chain of each path without building.
// Unmatched paths are reported per item, not as an error.
func Explain(opts ExplainOptions) ([]ui.Explanation, error) {
	plan, err := core.NewPlan(opts.PlanOptions)
	if err != nil {
		return nil, err
	}

	paths := opts.Paths
	if len(paths) == 0 && opts.All {
		src := opts.Source
		if src == nil {
			src = os.DirFS(plan.Config.SourcePath())
		}
		if paths, err = sourceFiles(src); err != nil {
			return nil, err
		}
	}

	items := make([]ui.Explanation, 0, len(paths))
	for _, p := range paths {
		p = matchers.Normalize(p)
		res, err := plan.Rules.Resolve(p)
		items = append(items, ui.Explanation{Path: p, Resolution: res, Err: err})
	}
	return items, nil
}

// sourceFiles lists the files of a source tree, skipping dot directories and
// installed packages
func sourceFiles(src fs.FS) ([]string, error) {
	var paths []string
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return fs.SkipDir
			}
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to list source files")
	}
	return paths, nil
}

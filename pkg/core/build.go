package core

import (
	"context"
	"io/fs"
	"os"

	"github.com/arthur-debert/assetpipe/pkg/emitter"
	"github.com/arthur-debert/assetpipe/pkg/filesystem"
	"github.com/arthur-debert/assetpipe/pkg/graph"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/manifest"
	"github.com/arthur-debert/assetpipe/pkg/rules"
	"github.com/arthur-debert/assetpipe/pkg/synthfs"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
	"github.com/arthur-debert/assetpipe/pkg/types"
)

// BuildOptions contains options for building one target
type BuildOptions struct {
	PlanOptions

	DryRun bool
	// Source overrides the configured source root
	Source fs.FS
	// FileSystem manages the output root; defaults to the OS
	FileSystem types.FS
}

// BuildResult describes a finished build
type BuildResult struct {
	Plan        *Plan
	OutputDir   string
	Resolutions map[string]rules.Resolution
	Emission    *emitter.Result
	Manifest    *manifest.Manifest
	Stats       *manifest.Stats
	// Written lists every file written, relative to OutputDir
	Written []string
	DryRun  bool
}

// Build runs the full pipeline for one target
func Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	logger := logging.GetLogger("core.build")
	logger.Info().
		Str("target", opts.Target).
		Str("mode", opts.Mode).
		Bool("dryRun", opts.DryRun).
		Msg("Starting build")

	// Step 1: Environment, entries and rules
	plan, err := NewPlan(opts.PlanOptions)
	if err != nil {
		return nil, err
	}
	cfg := plan.Config
	logger.Debug().
		Str("env", plan.Env.String()).
		Strs("entries", plan.Entries.Names()).
		Msg("Plan resolved")

	// Step 2: Discover every reachable module
	src := opts.Source
	if src == nil {
		src = os.DirFS(cfg.SourcePath())
	}
	g, err := graph.Discover(ctx, src, plan.Entries, graph.Options{
		Extensions: cfg.ResolveExtensions,
		Externals:  plan.Target.Externals,
		Aliases:    plan.Target.Aliases,
	})
	if err != nil {
		return nil, err
	}

	// Step 3: Resolve chains; unmatched paths fail the whole build
	resolutions, err := rules.NewScanner(plan.Rules).Scan(g.Paths())
	if err != nil {
		return nil, err
	}
	chains := make(map[string][]transforms.Ref, len(resolutions))
	for p, res := range resolutions {
		chains[p] = res.Chain
	}

	// Step 4: Transform and emit in memory
	statsFile := ""
	reserved := []string{manifest.FileName, synthfs.LockFile}
	if plan.Target.Stats != "" {
		statsFile = manifest.StatsFileName(plan.Target.Stats)
		reserved = append(reserved, statsFile)
	}
	em := emitter.New(transforms.NewRunner(plan.Registry, plan.Env), emitter.Options{
		Target:          plan.Env.Target(),
		PublicPath:      plan.Env.PublicPath(),
		HashLength:      cfg.HashLength,
		MaxChunks:       plan.Target.MaxChunks,
		SplitShared:     plan.Target.SplitShared,
		SharedChunkName: plan.Target.SharedChunkName,
		Filename:        plan.Target.Filename,
		CSSFilename:     plan.Target.CSSFilename,
		AssetFilename:   plan.Target.AssetFilename,
		Parallelism:     cfg.Parallelism,
		Compress:        plan.Target.Compress,
		CompressMinSize: plan.Target.CompressMinSize,
		Reserved:        reserved,
	})
	emission, err := em.Emit(ctx, g, chains)
	if err != nil {
		return nil, err
	}

	// Step 5: Record and finalize the manifest
	recorder := manifest.NewRecorder(plan.Env.PublicPath())
	if err := recorder.RecordResult(emission); err != nil {
		return nil, err
	}
	m, err := recorder.Finalize()
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Plan:        plan,
		OutputDir:   cfg.Path(plan.Target.Output),
		Resolutions: resolutions,
		Emission:    emission,
		Manifest:    m,
		DryRun:      opts.DryRun,
	}

	var statsData []byte
	if statsFile != "" {
		result.Stats = manifest.BuildStats(m, emission)
		if statsData, err = manifest.EncodeStats(result.Stats, plan.Target.Stats); err != nil {
			return nil, err
		}
	}

	// Step 6: Lock, clean and write the output root
	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	writer := synthfs.NewWriter(fsys, result.OutputDir)
	if opts.DryRun {
		writer = synthfs.NewDryRunWriter(fsys, result.OutputDir)
	}
	if err := writeOutput(ctx, writer, result, statsFile, statsData); err != nil {
		return nil, err
	}

	logger.Info().
		Str("output", result.OutputDir).
		Int("files", len(result.Written)).
		Str("hash", m.Hash).
		Msg("Build complete")
	return result, nil
}

func writeOutput(ctx context.Context, w *synthfs.Writer, result *BuildResult, statsFile string, statsData []byte) error {
	release, err := w.Acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := w.Clean(); err != nil {
		return err
	}

	var files []synthfs.File
	for _, a := range result.Emission.Artifacts {
		files = append(files, synthfs.File{Path: a.OutputPath, Content: a.Content})
		for _, sc := range a.Sidecars {
			files = append(files, synthfs.File{Path: sc.OutputPath, Content: sc.Content})
		}
	}
	if statsFile != "" {
		files = append(files, synthfs.File{Path: statsFile, Content: statsData})
	}
	if err := w.Write(ctx, files); err != nil {
		return err
	}

	// The manifest goes last; it is what makes the build visible.
	if err := result.Manifest.Write(w); err != nil {
		return err
	}

	for _, f := range files {
		result.Written = append(result.Written, f.Path)
	}
	result.Written = append(result.Written, manifest.FileName)
	return nil
}

// Package emitter turns a discovered module graph into content-addressed
// artifacts. It runs every module through its transform chain, groups the
// results into chunks for the build target and names each output file after
// a hash of its content.
//
// Emission is entirely in memory. Writing the result to disk is the job of
// Writer, so a failed build never touches the output directory.
package emitter

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/graph"
	"github.com/arthur-debert/assetpipe/pkg/internal/hashutil"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Default naming templates
const (
	DefaultFilename      = "[name].[hash].js"
	DefaultCSSFilename   = "[name].[hash].css"
	DefaultAssetFilename = "[name].[hash].[ext]"
	DefaultSharedChunk   = "commons"
	DefaultHashLength    = 8
)

// Options configures one emission
type Options struct {
	Target     buildenv.Target
	PublicPath string
	HashLength int

	// MaxChunks caps the number of chunks; 0 means no cap
	MaxChunks       int
	SplitShared     bool
	SharedChunkName string

	Filename      string
	CSSFilename   string
	AssetFilename string

	// Parallelism bounds the transform workers; 0 uses one per CPU
	Parallelism int

	// Compress lists sidecar encodings: gzip, zstd or lz4
	Compress        []string
	CompressMinSize int

	// Reserved output paths that artifacts may not claim
	Reserved []string
}

func (o Options) withDefaults() Options {
	if o.HashLength == 0 {
		o.HashLength = DefaultHashLength
	}
	if o.SharedChunkName == "" {
		o.SharedChunkName = DefaultSharedChunk
	}
	if o.Filename == "" {
		o.Filename = DefaultFilename
	}
	if o.CSSFilename == "" {
		o.CSSFilename = DefaultCSSFilename
	}
	if o.AssetFilename == "" {
		o.AssetFilename = DefaultAssetFilename
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.NumCPU()
	}
	if o.Target == buildenv.TargetServer && o.MaxChunks == 0 {
		o.MaxChunks = 1
	}
	return o
}

// Emitter produces the artifacts of one target
type Emitter struct {
	opts   Options
	runner *transforms.Runner
	logger zerolog.Logger
}

// New creates an emitter that transforms modules with runner
func New(runner *transforms.Runner, opts Options) *Emitter {
	return &Emitter{
		opts:   opts.withDefaults(),
		runner: runner,
		logger: logging.GetLogger("emitter").With().Str("target", string(opts.Target)).Logger(),
	}
}

// Emit transforms every module of g with its chain and assembles the output.
// chains must hold a chain for every path in the graph.
func (e *Emitter) Emit(ctx context.Context, g *graph.Graph, chains map[string][]transforms.Ref) (*Result, error) {
	done := logging.LogOperationStart(e.logger, "emit")
	defer done()

	modules, err := e.transformAll(ctx, g, chains)
	if err != nil {
		return nil, err
	}

	planned, err := e.planChunks(g, modules)
	if err != nil {
		return nil, err
	}

	b := &builder{
		Emitter: e,
		g:       g,
		modules: modules,
		claimed: make(map[string]string),
		assets:  make(map[string]*Artifact),
	}
	for _, r := range e.opts.Reserved {
		b.claimed[r] = ""
	}

	if err := b.emitAssets(); err != nil {
		return nil, err
	}

	result := &Result{Externals: g.Externals()}
	for _, name := range sortedKeys(b.assets) {
		result.Artifacts = append(result.Artifacts, *b.assets[name])
	}
	for _, pc := range planned {
		chunk, files, err := b.emitChunk(pc)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			continue
		}
		result.Chunks = append(result.Chunks, chunk)
		result.Artifacts = append(result.Artifacts, files...)
	}

	if err := e.compress(result.Artifacts); err != nil {
		return nil, err
	}

	e.logger.Info().
		Int("chunks", len(result.Chunks)).
		Int("artifacts", len(result.Artifacts)).
		Msg("Emission complete")
	return result, nil
}

// transformAll runs the chains on a bounded worker pool
func (e *Emitter) transformAll(ctx context.Context, g *graph.Graph, chains map[string][]transforms.Ref) (map[string]transforms.Module, error) {
	paths := g.Paths()
	out := make(map[string]transforms.Module, len(paths))
	var mu sync.Mutex

	for _, p := range paths {
		if _, ok := chains[p]; !ok {
			return nil, errors.Newf(errors.ErrInternal, "no transform chain resolved for %s", p).
				WithDetail("path", p)
		}
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(e.opts.Parallelism)

	for _, p := range paths {
		p := p
		chain := chains[p]
		node, _ := g.Node(p)
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mod, err := e.runner.Run(chain, transforms.NewModule(p, node.Content))
			if err != nil {
				return err
			}
			mu.Lock()
			out[p] = mod
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// builder holds the state of one emission
type builder struct {
	*Emitter
	g       *graph.Graph
	modules map[string]transforms.Module
	// claimed maps output paths to the logical name that owns them
	claimed map[string]string
	assets  map[string]*Artifact
}

func (b *builder) claim(out, logical string) error {
	if owner, taken := b.claimed[out]; taken && owner != logical {
		if owner == "" {
			return errors.Newf(errors.ErrOutputCollision, "%s would overwrite reserved file %s", logical, out).
				WithDetail("path", out)
		}
		return errors.Newf(errors.ErrOutputCollision, "%s and %s both emit %s", owner, logical, out).
			WithDetail("path", out).
			WithDetail("names", []string{owner, logical})
	}
	b.claimed[out] = logical
	return nil
}

// emitAssets names every module whose chain ended as a standalone file
func (b *builder) emitAssets() error {
	for _, p := range b.g.Paths() {
		mod := b.modules[p]
		if mod.Kind != transforms.KindAsset {
			continue
		}
		template := mod.NameTemplate
		if template == "" {
			template = b.opts.AssetFilename
		}
		full := hashutil.Sum(mod.Content)
		name := strings.TrimSuffix(p, path.Ext(p))
		out := path.Clean(expandName(template, name, mod.Ext, full, b.opts.HashLength))
		if err := b.claim(out, p); err != nil {
			return err
		}
		b.assets[p] = &Artifact{
			LogicalName: p,
			ContentHash: hashutil.Short(full, b.opts.HashLength),
			OutputPath:  out,
			SizeBytes:   int64(len(mod.Content)),
			Kind:        KindAsset,
			Content:     mod.Content,
		}
	}
	return nil
}

// publicURL is the URL an emitted asset is served from
func (b *builder) publicURL(a *Artifact) string {
	return b.opts.PublicPath + a.OutputPath
}

// emitChunk renders the script and style files of a chunk
func (b *builder) emitChunk(pc plannedChunk) (Chunk, []Artifact, error) {
	var script, style strings.Builder
	var scriptMods, styleMods []string
	scriptRefs := make(map[string]bool)
	styleRefs := make(map[string]bool)

	for _, p := range pc.modules {
		mod := b.modules[p]
		node, _ := b.g.Node(p)

		switch mod.Kind {
		case transforms.KindAsset:
			if !b.importedByScript(p, pc) {
				continue
			}
			a := b.assets[p]
			stub := fmt.Sprintf("export default %q;\n", b.publicURL(a))
			fmt.Fprintf(&script, "/* %s */\n%s", p, stub)
			scriptMods = append(scriptMods, p)
			scriptRefs[p] = true
		case transforms.KindStyle:
			content := b.rewriteURLs(stripBundledImports(string(mod.Content), node), node, styleRefs)
			fmt.Fprintf(&style, "/* %s */\n%s", p, ensureNewline(content))
			styleMods = append(styleMods, p)
		default:
			content := b.rewriteURLs(string(mod.Content), node, scriptRefs)
			for _, ref := range node.Refs {
				if ref.Kind == graph.RefImport && b.isAsset(ref.Path) {
					scriptRefs[ref.Path] = true
				}
			}
			fmt.Fprintf(&script, "/* %s */\n%s", p, ensureNewline(content))
			scriptMods = append(scriptMods, p)
		}
	}

	chunk := Chunk{Name: pc.name, Entry: pc.entry, Modules: append([]string(nil), pc.modules...)}
	var files []Artifact

	// an empty shared chunk is dropped
	if !pc.entry && len(scriptMods) == 0 && len(styleMods) == 0 {
		b.logger.Debug().Str("chunk", pc.name).Msg("Chunk has nothing to render, skipped")
		return chunk, nil, nil
	}

	if len(scriptMods) > 0 || len(styleMods) == 0 {
		a, err := b.chunkFile(pc.name, "js", b.opts.Filename, []byte(script.String()), scriptMods, scriptRefs)
		if err != nil {
			return Chunk{}, nil, err
		}
		files = append(files, a)
		chunk.Files = append(chunk.Files, a.OutputPath)
	}
	if len(styleMods) > 0 {
		a, err := b.chunkFile(pc.name, "css", b.opts.CSSFilename, []byte(style.String()), styleMods, styleRefs)
		if err != nil {
			return Chunk{}, nil, err
		}
		files = append(files, a)
		chunk.Files = append(chunk.Files, a.OutputPath)
	}

	b.logger.Debug().Str("chunk", pc.name).Strs("files", chunk.Files).Msg("Chunk emitted")
	return chunk, files, nil
}

func (b *builder) chunkFile(chunk, ext, template string, content []byte, mods []string, refs map[string]bool) (Artifact, error) {
	full := hashutil.Sum(content)
	out := path.Clean(expandName(template, chunk, ext, full, b.opts.HashLength))
	logical := chunk + "." + ext
	if err := b.claim(out, logical); err != nil {
		return Artifact{}, err
	}
	return Artifact{
		LogicalName: logical,
		ContentHash: hashutil.Short(full, b.opts.HashLength),
		OutputPath:  out,
		SizeBytes:   int64(len(content)),
		Kind:        KindChunk,
		Chunk:       chunk,
		Refs:        sortedKeys(refs),
		Modules:     mods,
		Content:     content,
	}, nil
}

func (b *builder) isAsset(p string) bool {
	if p == "" {
		return false
	}
	_, ok := b.assets[p]
	return ok
}

// importedByScript reports whether an emitted asset needs a URL module in
// the chunk: it is an entry itself or a script imports it
func (b *builder) importedByScript(p string, pc plannedChunk) bool {
	for _, entry := range b.g.Entries() {
		if entry.Path == p {
			return true
		}
	}
	for _, q := range pc.modules {
		if b.modules[q].Kind != transforms.KindScript {
			continue
		}
		node, _ := b.g.Node(q)
		for _, ref := range node.Refs {
			if ref.Path == p && ref.Kind == graph.RefImport {
				return true
			}
		}
	}
	return false
}

// rewriteURLs points url() references at emitted assets to their public URL
func (b *builder) rewriteURLs(content string, node *graph.Node, refs map[string]bool) string {
	for _, ref := range node.Refs {
		if ref.Kind != graph.RefURL || !b.isAsset(ref.Path) {
			continue
		}
		re := regexp.MustCompile(`url\(\s*(\\?['"]?)` + regexp.QuoteMeta(ref.Spec) + `(\\?['"]?)\s*\)`)
		target := b.publicURL(b.assets[ref.Path])
		content = re.ReplaceAllString(content, "url(${1}"+strings.ReplaceAll(target, "$", "$$")+"${2})")
		refs[ref.Path] = true
	}
	return content
}

// stripBundledImports drops @import rules for stylesheets already in the chunk
func stripBundledImports(content string, node *graph.Node) string {
	for _, ref := range node.Refs {
		if ref.Kind != graph.RefStyleImport || ref.Path == "" {
			continue
		}
		re := regexp.MustCompile(`@import\s+(?:url\(\s*)?['"]?` + regexp.QuoteMeta(ref.Spec) + `['"]?\s*\)?[^;\n]*;?[ \t]*\n?`)
		content = re.ReplaceAllString(content, "")
	}
	return content
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

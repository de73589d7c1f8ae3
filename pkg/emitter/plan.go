package emitter

import (
	"fmt"

	"github.com/arthur-debert/assetpipe/pkg/buildenv"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/graph"
	"github.com/arthur-debert/assetpipe/pkg/transforms"
)

// plannedChunk is a chunk before its files are rendered
type plannedChunk struct {
	name    string
	entry   bool
	modules []string
}

// planChunks groups reachable modules into chunks for the target
func (e *Emitter) planChunks(g *graph.Graph, modules map[string]transforms.Module) ([]plannedChunk, error) {
	if e.opts.Target == buildenv.TargetServer {
		return e.planSingle(g)
	}
	return e.planSplit(g, modules)
}

// planSingle merges everything into one chunk
func (e *Emitter) planSingle(g *graph.Graph) ([]plannedChunk, error) {
	if e.opts.MaxChunks != 1 {
		return nil, errors.Newf(errors.ErrChunkConstraint,
			"target %s emits exactly one chunk but max_chunks is %d", e.opts.Target, e.opts.MaxChunks).
			WithDetail("max_chunks", e.opts.MaxChunks)
	}

	ents := g.Entries()
	name := string(e.opts.Target)
	if len(ents) == 1 {
		name = ents[0].Name
	}

	seen := make(map[string]bool)
	var modules []string
	for _, entry := range ents {
		for _, p := range g.Reach(entry.Name) {
			if !seen[p] {
				seen[p] = true
				modules = append(modules, p)
			}
		}
	}
	return []plannedChunk{{name: name, entry: true, modules: modules}}, nil
}

// planSplit emits one chunk per entry, extracting modules reachable from
// several entries into the shared chunk when enabled. Assets are never
// extracted: each importing chunk keeps its own URL module for them.
func (e *Emitter) planSplit(g *graph.Graph, modules map[string]transforms.Module) ([]plannedChunk, error) {
	ents := g.Entries()

	if e.opts.SplitShared {
		for _, entry := range ents {
			if entry.Name == e.opts.SharedChunkName {
				return nil, errors.Newf(errors.ErrChunkConstraint,
					"entry '%s' has the same name as the shared chunk", entry.Name).
					WithDetail("entry", entry.Name)
			}
		}
	}

	count := make(map[string]int)
	var firstSeen []string
	for _, entry := range ents {
		for _, p := range g.Reach(entry.Name) {
			if count[p] == 0 {
				firstSeen = append(firstSeen, p)
			}
			count[p]++
		}
	}

	shared := make(map[string]bool)
	var sharedModules []string
	if e.opts.SplitShared && len(ents) > 1 {
		for _, p := range firstSeen {
			if count[p] > 1 && modules[p].Kind != transforms.KindAsset {
				shared[p] = true
				sharedModules = append(sharedModules, p)
			}
		}
	}

	chunks := e.entryChunks(g, shared)
	if len(sharedModules) > 0 {
		chunks = append(chunks, plannedChunk{name: e.opts.SharedChunkName, modules: sharedModules})
	}

	if e.opts.MaxChunks > 0 && len(chunks) > e.opts.MaxChunks {
		if len(sharedModules) > 0 {
			e.logger.Info().
				Int("chunks", len(chunks)).
				Int("max", e.opts.MaxChunks).
				Msg("Over the chunk limit, folding shared modules back into entry chunks")
			chunks = e.entryChunks(g, nil)
		}
		if len(chunks) > e.opts.MaxChunks {
			return nil, errors.Newf(errors.ErrChunkConstraint,
				"%d entries need %d chunks but max_chunks is %d", len(ents), len(chunks), e.opts.MaxChunks).
				WithDetail("chunks", len(chunks)).
				WithDetail("max_chunks", e.opts.MaxChunks)
		}
	}
	return chunks, nil
}

func (e *Emitter) entryChunks(g *graph.Graph, exclude map[string]bool) []plannedChunk {
	ents := g.Entries()
	chunks := make([]plannedChunk, 0, len(ents)+1)
	for _, entry := range ents {
		var modules []string
		for _, p := range g.Reach(entry.Name) {
			if !exclude[p] {
				modules = append(modules, p)
			}
		}
		chunks = append(chunks, plannedChunk{name: entry.Name, entry: true, modules: modules})
	}
	return chunks
}

func (c plannedChunk) String() string {
	return fmt.Sprintf("%s(%d modules)", c.name, len(c.modules))
}

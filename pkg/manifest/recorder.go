package manifest

import (
	"sort"
	"sync"

	"github.com/arthur-debert/assetpipe/pkg/emitter"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/internal/hashutil"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/rs/zerolog"
)

// Recorder accumulates artifacts until Finalize. It is safe for concurrent
// use.
type Recorder struct {
	mu         sync.Mutex
	logger     zerolog.Logger
	publicPath string
	artifacts  map[string]emitter.Artifact
	chunks     map[string][]string
	finalized  bool
}

// NewRecorder creates an empty recorder
func NewRecorder(publicPath string) *Recorder {
	return &Recorder{
		logger:     logging.GetLogger("manifest"),
		publicPath: publicPath,
		artifacts:  make(map[string]emitter.Artifact),
		chunks:     make(map[string][]string),
	}
}

// Record adds or updates the entry for a.LogicalName. Recording a name again
// with the same hash is a no-op; a different hash is a collision.
func (r *Recorder) Record(a emitter.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return errors.Newf(errors.ErrManifestFinalized, "cannot record %s after finalize", a.LogicalName)
	}
	if prev, ok := r.artifacts[a.LogicalName]; ok && prev.ContentHash != a.ContentHash {
		return errors.Newf(errors.ErrOutputCollision,
			"%s recorded with hash %s and %s", a.LogicalName, prev.ContentHash, a.ContentHash).
			WithDetail("name", a.LogicalName)
	}
	r.artifacts[a.LogicalName] = a
	r.logger.Trace().Str("name", a.LogicalName).Str("path", a.OutputPath).Msg("Recorded artifact")
	return nil
}

// RecordChunk records the files of a chunk
func (r *Recorder) RecordChunk(c emitter.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return errors.Newf(errors.ErrManifestFinalized, "cannot record chunk %s after finalize", c.Name)
	}
	r.chunks[c.Name] = append([]string(nil), c.Files...)
	return nil
}

// RecordResult records every artifact and chunk of an emission
func (r *Recorder) RecordResult(res *emitter.Result) error {
	for _, a := range res.Artifacts {
		if err := r.Record(a); err != nil {
			return err
		}
	}
	for _, c := range res.Chunks {
		if err := r.RecordChunk(c); err != nil {
			return err
		}
	}
	return nil
}

// Finalize freezes the recorder and returns the manifest. It fails when an
// artifact references a name that was never recorded or a chunk lists a file
// no artifact produced. It can only be called once.
func (r *Recorder) Finalize() (*Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return nil, errors.New(errors.ErrManifestFinalized, "manifest already finalized")
	}

	files := make(map[string]string, len(r.artifacts))
	outputs := make(map[string]bool, len(r.artifacts))
	hashes := make([]string, 0, len(r.artifacts))
	for name, a := range r.artifacts {
		files[name] = a.OutputPath
		outputs[a.OutputPath] = true
		hashes = append(hashes, a.ContentHash)
	}

	var missing []string
	for _, a := range r.artifacts {
		for _, ref := range a.Refs {
			if _, ok := r.artifacts[ref]; !ok {
				missing = append(missing, ref)
			}
		}
	}
	for _, chunkFiles := range r.chunks {
		for _, f := range chunkFiles {
			if !outputs[f] {
				missing = append(missing, f)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.Newf(errors.ErrManifestIncomplete, "%d referenced artifacts were never recorded", len(missing)).
			WithDetail("missing", missing)
	}

	byChunk := make(map[string][]string, len(r.chunks))
	for name, chunkFiles := range r.chunks {
		byChunk[name] = append([]string(nil), chunkFiles...)
	}

	r.finalized = true
	m := &Manifest{
		PublicPath:        r.publicPath,
		AssetsByChunkName: byChunk,
		Hash:              hashutil.Combine(hashes),
		Files:             files,
	}
	r.logger.Info().Int("files", len(files)).Str("hash", hashutil.Short(m.Hash, 12)).Msg("Manifest finalized")
	return m, nil
}

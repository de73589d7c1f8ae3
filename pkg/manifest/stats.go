package manifest

import (
	"encoding/json"
	"sort"

	"github.com/arthur-debert/assetpipe/pkg/emitter"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/fxamacker/cbor/v2"
)

// Stats formats
const (
	StatsJSON = "json"
	StatsCBOR = "cbor"
)

// Stats describes a build in more detail than the manifest
type Stats struct {
	Hash             string                `json:"hash"`
	PublicPath       string                `json:"publicPath"`
	Assets           []StatsAsset          `json:"assets"`
	Chunks           []StatsChunk          `json:"chunks"`
	NamedChunkGroups map[string]ChunkGroup `json:"namedChunkGroups"`
	Externals        []string              `json:"externals,omitempty"`
}

// StatsAsset is one emitted file
type StatsAsset struct {
	Name        string   `json:"name"`
	LogicalName string   `json:"logicalName"`
	Size        int64    `json:"size"`
	Kind        string   `json:"kind"`
	Chunks      []string `json:"chunks,omitempty"`
	Compressed  []string `json:"compressed,omitempty"`
}

// StatsChunk is one chunk
type StatsChunk struct {
	ID      int      `json:"id"`
	Names   []string `json:"names"`
	Entry   bool     `json:"entry"`
	Files   []string `json:"files"`
	Modules []string `json:"modules"`
}

// ChunkGroup lists what a page needs to load for one entry
type ChunkGroup struct {
	Chunks []int    `json:"chunks"`
	Assets []string `json:"assets"`
}

var cborEncMode cbor.EncMode

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("manifest: CBOR encoder initialization failed: " + err.Error())
	}
}

// BuildStats derives stats from a finalized manifest and the emission result
func BuildStats(m *Manifest, res *emitter.Result) *Stats {
	s := &Stats{
		Hash:             m.Hash,
		PublicPath:       m.PublicPath,
		NamedChunkGroups: make(map[string]ChunkGroup),
		Externals:        res.Externals,
	}

	ids := make(map[string]int, len(res.Chunks))
	var shared []int
	var sharedFiles []string
	for i, c := range res.Chunks {
		ids[c.Name] = i
		s.Chunks = append(s.Chunks, StatsChunk{
			ID:      i,
			Names:   []string{c.Name},
			Entry:   c.Entry,
			Files:   c.Files,
			Modules: c.Modules,
		})
		if !c.Entry {
			shared = append(shared, i)
			sharedFiles = append(sharedFiles, c.Files...)
		}
	}

	for _, a := range res.Artifacts {
		asset := StatsAsset{
			Name:        a.OutputPath,
			LogicalName: a.LogicalName,
			Size:        a.SizeBytes,
			Kind:        string(a.Kind),
		}
		if a.Chunk != "" {
			asset.Chunks = []string{a.Chunk}
		}
		for _, sc := range a.Sidecars {
			asset.Compressed = append(asset.Compressed, sc.OutputPath)
		}
		s.Assets = append(s.Assets, asset)
	}
	sort.Slice(s.Assets, func(i, j int) bool { return s.Assets[i].Name < s.Assets[j].Name })

	// Every entry group loads the shared chunks first.
	for _, c := range res.Chunks {
		if !c.Entry {
			continue
		}
		group := ChunkGroup{
			Chunks: append(append([]int(nil), shared...), ids[c.Name]),
			Assets: append(append([]string(nil), sharedFiles...), c.Files...),
		}
		s.NamedChunkGroups[c.Name] = group
	}
	return s
}

// StatsFileName returns the file stats are written to for a format
func StatsFileName(format string) string {
	return "stats." + format
}

// EncodeStats serializes stats in the given format
func EncodeStats(s *Stats, format string) ([]byte, error) {
	switch format {
	case StatsJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode stats")
		}
		return append(data, '\n'), nil
	case StatsCBOR:
		data, err := cborEncMode.Marshal(s)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode stats")
		}
		return data, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown stats format %q", format).
			WithDetail("format", format)
	}
}

// DecodeStats reads stats written by EncodeStats
func DecodeStats(data []byte, format string) (*Stats, error) {
	var s Stats
	var err error
	switch format {
	case StatsJSON:
		err = json.Unmarshal(data, &s)
	case StatsCBOR:
		err = cbor.Unmarshal(data, &s)
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown stats format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestRead, "invalid stats")
	}
	return &s, nil
}

package emitter

// ArtifactKind distinguishes chunk files from standalone assets
type ArtifactKind string

const (
	// KindChunk is a script or stylesheet file of a chunk
	KindChunk ArtifactKind = "chunk"
	// KindAsset is a standalone emitted file
	KindAsset ArtifactKind = "asset"
)

// Artifact is one emitted output file. Identity is (LogicalName, ContentHash).
type Artifact struct {
	// LogicalName is the stable name consumers look up: "main.js" for chunk
	// files, the source path for assets
	LogicalName string `json:"logicalName"`
	// ContentHash is the truncated content hash embedded in OutputPath
	ContentHash string `json:"contentHash"`
	// OutputPath is slash-separated and relative to the output root
	OutputPath string `json:"outputPath"`
	SizeBytes  int64  `json:"size"`

	Kind ArtifactKind `json:"kind"`
	// Chunk is the owning chunk for chunk files
	Chunk string `json:"chunk,omitempty"`
	// Refs are the logical names of the assets this file references
	Refs []string `json:"refs,omitempty"`
	// Modules are the source paths bundled into a chunk file
	Modules []string `json:"modules,omitempty"`

	Content  []byte    `json:"-"`
	Sidecars []Sidecar `json:"sidecars,omitempty"`
}

// Sidecar is a precompressed copy of an artifact
type Sidecar struct {
	Encoding   string `json:"encoding"`
	OutputPath string `json:"outputPath"`
	SizeBytes  int64  `json:"size"`
	Content    []byte `json:"-"`
}

// Chunk is a named group of modules emitted together
type Chunk struct {
	Name string `json:"name"`
	// Entry is true for chunks that belong to an entry point
	Entry bool `json:"entry"`
	// Files are the chunk's output paths, script first
	Files []string `json:"files"`
	// Modules are the source paths in the chunk, dependencies first
	Modules []string `json:"modules"`
}

// Result is everything a build emits, still in memory
type Result struct {
	// Artifacts holds assets sorted by logical name followed by chunk files
	// in chunk order
	Artifacts []Artifact
	Chunks    []Chunk
	// Externals are packages referenced but left to the runtime
	Externals []string
}

// AssetsByChunkName maps chunk names to their output files
func (r *Result) AssetsByChunkName() map[string][]string {
	out := make(map[string][]string, len(r.Chunks))
	for _, c := range r.Chunks {
		out[c.Name] = append([]string(nil), c.Files...)
	}
	return out
}

package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/assetpipe/pkg/errors"
)

// FileName is the manifest's fixed name inside the output root
const FileName = "asset-manifest.json"

// Manifest maps logical names to the current hashed output paths
type Manifest struct {
	PublicPath        string              `json:"publicPath"`
	AssetsByChunkName map[string][]string `json:"assetsByChunkName"`
	// Hash combines the content hashes of every artifact
	Hash string `json:"hash"`
	// Files maps logical names to output paths
	Files map[string]string `json:"files"`
}

// Resolve returns the output path recorded for a logical name
func (m *Manifest) Resolve(logicalName string) (string, bool) {
	p, ok := m.Files[logicalName]
	return p, ok
}

// URL returns the public URL of a logical name
func (m *Manifest) URL(logicalName string) (string, bool) {
	p, ok := m.Resolve(logicalName)
	if !ok {
		return "", false
	}
	return m.PublicPath + p, true
}

// LogicalNames returns every recorded name sorted
func (m *Manifest) LogicalNames() []string {
	names := make([]string, 0, len(m.Files))
	for name := range m.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Marshal renders the manifest as indented JSON
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode manifest")
	}
	return append(data, '\n'), nil
}

// AtomicWriter replaces a file under the output root in one step
type AtomicWriter interface {
	WriteAtomic(name string, content []byte) error
}

// Write replaces the manifest file wholesale
func (m *Manifest) Write(w AtomicWriter) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return w.WriteAtomic(FileName, data)
}

// Parse decodes a manifest
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestRead, "invalid manifest")
	}
	if m.Files == nil {
		m.Files = make(map[string]string)
	}
	if m.AssetsByChunkName == nil {
		m.AssetsByChunkName = make(map[string][]string)
	}
	return &m, nil
}

// Load reads the manifest of an output root. path may name the manifest
// file or the directory that holds it.
func Load(path string) (*Manifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "no manifest at %s", path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrManifestRead, "failed to read %s", path)
	}
	return Parse(data)
}

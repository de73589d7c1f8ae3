// pkg/manifest/manifest_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (t.TempDir) for Write/Load
// PURPOSE: Test recording, finalize guarantees, manifest I/O and stats

package manifest

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/arthur-debert/assetpipe/pkg/emitter"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/filesystem"
	"github.com/arthur-debert/assetpipe/pkg/internal/hashutil"
	"github.com/arthur-debert/assetpipe/pkg/synthfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *emitter.Result {
	return &emitter.Result{
		Artifacts: []emitter.Artifact{
			{LogicalName: "src/logo.png", ContentHash: "aaaa1111", OutputPath: "static/media/src/logo.aaaa1111.png", SizeBytes: 3, Kind: emitter.KindAsset},
			{LogicalName: "main.js", ContentHash: "bbbb2222", OutputPath: "js/main.bbbb2222.js", SizeBytes: 10, Kind: emitter.KindChunk, Chunk: "main", Refs: []string{"src/logo.png"},
				Sidecars: []emitter.Sidecar{{Encoding: "gzip", OutputPath: "js/main.bbbb2222.js.gz"}}},
			{LogicalName: "admin.js", ContentHash: "cccc3333", OutputPath: "js/admin.cccc3333.js", SizeBytes: 8, Kind: emitter.KindChunk, Chunk: "admin"},
			{LogicalName: "commons.js", ContentHash: "dddd4444", OutputPath: "js/commons.dddd4444.js", SizeBytes: 5, Kind: emitter.KindChunk, Chunk: "commons"},
		},
		Chunks: []emitter.Chunk{
			{Name: "admin", Entry: true, Files: []string{"js/admin.cccc3333.js"}, Modules: []string{"src/admin.js"}},
			{Name: "main", Entry: true, Files: []string{"js/main.bbbb2222.js"}, Modules: []string{"src/logo.png", "src/main.js"}},
			{Name: "commons", Files: []string{"js/commons.dddd4444.js"}, Modules: []string{"src/shared.js"}},
		},
	}
}

func TestRecorder_Finalize(t *testing.T) {
	r := NewRecorder("/")
	require.NoError(t, r.RecordResult(sampleResult()))

	m, err := r.Finalize()
	require.NoError(t, err)

	assert.Equal(t, "/", m.PublicPath)
	assert.Len(t, m.Files, 4, "every artifact appears exactly once")
	assert.Equal(t, []string{"js/main.bbbb2222.js"}, m.AssetsByChunkName["main"])
	assert.Equal(t, hashutil.Combine([]string{"aaaa1111", "bbbb2222", "cccc3333", "dddd4444"}), m.Hash)

	p, ok := m.Resolve("src/logo.png")
	require.True(t, ok)
	assert.Equal(t, "static/media/src/logo.aaaa1111.png", p)
	url, ok := m.URL("main.js")
	require.True(t, ok)
	assert.Equal(t, "/js/main.bbbb2222.js", url)
	_, ok = m.Resolve("missing.js")
	assert.False(t, ok)
}

func TestRecorder_FinalizeOnce(t *testing.T) {
	r := NewRecorder("/")
	require.NoError(t, r.RecordResult(sampleResult()))
	_, err := r.Finalize()
	require.NoError(t, err)

	_, err = r.Finalize()
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestFinalized))

	err = r.Record(emitter.Artifact{LogicalName: "late.js", ContentHash: "eeee"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestFinalized))
}

func TestRecorder_Collision(t *testing.T) {
	r := NewRecorder("/")
	a := emitter.Artifact{LogicalName: "main.js", ContentHash: "1111", OutputPath: "main.1111.js"}
	require.NoError(t, r.Record(a))
	require.NoError(t, r.Record(a), "re-recording the same artifact is fine")

	a.ContentHash = "2222"
	err := r.Record(a)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrOutputCollision))
}

func TestRecorder_Incomplete(t *testing.T) {
	t.Run("missing reference", func(t *testing.T) {
		r := NewRecorder("/")
		require.NoError(t, r.Record(emitter.Artifact{
			LogicalName: "main.js", ContentHash: "1111", OutputPath: "main.1111.js",
			Refs: []string{"src/logo.png"},
		}))

		_, err := r.Finalize()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestIncomplete))
		assert.Equal(t, []string{"src/logo.png"}, errors.GetErrorDetails(err)["missing"])

		// A failed finalize leaves the recorder open.
		require.NoError(t, r.Record(emitter.Artifact{LogicalName: "src/logo.png", ContentHash: "2222", OutputPath: "logo.2222.png"}))
		_, err = r.Finalize()
		assert.NoError(t, err)
	})

	t.Run("chunk file without artifact", func(t *testing.T) {
		r := NewRecorder("/")
		require.NoError(t, r.RecordChunk(emitter.Chunk{Name: "main", Files: []string{"js/main.1111.js"}}))

		_, err := r.Finalize()
		assert.True(t, errors.IsErrorCode(err, errors.ErrManifestIncomplete))
	})
}

func TestRecorder_Concurrent(t *testing.T) {
	r := NewRecorder("")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a'+i%26)) + string(rune('a'+i/26)) + ".js"
			assert.NoError(t, r.Record(emitter.Artifact{LogicalName: name, ContentHash: name, OutputPath: name}))
		}(i)
	}
	wg.Wait()

	m, err := r.Finalize()
	require.NoError(t, err)
	assert.Len(t, m.Files, 50)
}

func TestManifest_WriteAndLoad(t *testing.T) {
	root := t.TempDir()
	r := NewRecorder("/static/")
	require.NoError(t, r.RecordResult(sampleResult()))
	m, err := r.Finalize()
	require.NoError(t, err)

	require.NoError(t, m.Write(synthfs.NewWriter(filesystem.NewOS(), root)))

	loaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)

	loaded, err = Load(filepath.Join(root, FileName))
	require.NoError(t, err)
	assert.Equal(t, m.Hash, loaded.Hash)

	_, err = Load(filepath.Join(t.TempDir(), "nothing"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))

	_, err = Parse([]byte("{not json"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestRead))
}

func TestStats(t *testing.T) {
	res := sampleResult()
	r := NewRecorder("/")
	require.NoError(t, r.RecordResult(res))
	m, err := r.Finalize()
	require.NoError(t, err)

	s := BuildStats(m, res)
	assert.Equal(t, m.Hash, s.Hash)
	require.Len(t, s.Chunks, 3)
	assert.Len(t, s.Assets, 4)
	assert.Equal(t, "js/admin.cccc3333.js", s.Assets[0].Name)
	assert.Equal(t, []string{"js/main.bbbb2222.js.gz"}, s.Assets[2].Compressed)

	main := s.NamedChunkGroups["main"]
	assert.Equal(t, []int{2, 1}, main.Chunks)
	assert.Equal(t, []string{"js/commons.dddd4444.js", "js/main.bbbb2222.js"}, main.Assets)
	_, hasCommons := s.NamedChunkGroups["commons"]
	assert.False(t, hasCommons)

	for _, format := range []string{StatsJSON, StatsCBOR} {
		t.Run(format, func(t *testing.T) {
			data, err := EncodeStats(s, format)
			require.NoError(t, err)
			decoded, err := DecodeStats(data, format)
			require.NoError(t, err)
			assert.Equal(t, s.NamedChunkGroups, decoded.NamedChunkGroups)
			assert.Equal(t, s.Hash, decoded.Hash)
		})
	}

	_, err = EncodeStats(s, "xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Equal(t, "stats.cbor", StatsFileName(StatsCBOR))
}

// pkg/core/build_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), embedded default configuration
// PURPOSE: Test the build pipeline end to end for both targets

package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/assetpipe/pkg/config"
	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/manifest"
	"github.com/arthur-debert/assetpipe/pkg/synthfs"
	"github.com/arthur-debert/assetpipe/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func project() testutil.FileTree {
	return testutil.FileTree{
		"src/main.js": strings.Join([]string{
			"import './app.css';",
			"import logo from './logo.png';",
			"import data from './data.bin';",
			"import { greet } from './lib/greet';",
			"greet(process.env.NODE_ENV, logo, data);",
			"",
		}, "\n"),
		"src/lib/greet.js": "export function greet() {}\n",
		"src/app.css":      ".app { color: red; }\n",
		"src/logo.png":     "tiny-png",
		"src/data.bin":     "\x00\x01\x02binary",
		"src/server.js":    "import { greet } from './lib/greet';\ngreet('server');\n",
	}
}

func setup(t *testing.T, extra testutil.FileTree) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	testutil.WriteTree(t, root, project())
	testutil.WriteTree(t, root, extra)

	cfg, err := config.Load(config.LoadOptions{Dir: root, SkipEnv: true})
	require.NoError(t, err)
	return root, cfg
}

func build(t *testing.T, cfg *config.Config, target string, mutate ...func(*BuildOptions)) (*BuildResult, error) {
	t.Helper()
	opts := BuildOptions{PlanOptions: PlanOptions{Config: cfg, Target: target, Mode: "production"}}
	for _, fn := range mutate {
		fn(&opts)
	}
	return Build(context.Background(), opts)
}

func TestBuild_Browser(t *testing.T) {
	root, cfg := setup(t, nil)

	result, err := build(t, cfg, "browser")
	require.NoError(t, err)

	out := filepath.Join(root, "dist", "browser")
	assert.Equal(t, out, result.OutputDir)

	m, err := manifest.Load(out)
	require.NoError(t, err)
	assert.Equal(t, result.Manifest, m)
	assert.Equal(t, "/", m.PublicPath)

	for _, name := range []string{"main.js", "main.css", "src/data.bin"} {
		p, ok := m.Resolve(name)
		require.True(t, ok, name)
		assert.True(t, testutil.FileExists(t, filepath.Join(out, p)), p)
	}
	_, inlined := m.Resolve("src/logo.png")
	assert.False(t, inlined, "small images are inlined into the script")

	mainJS, _ := m.Resolve("main.js")
	content := testutil.ReadFile(t, filepath.Join(out, mainJS))
	assert.Contains(t, content, `greet("production"`)
	assert.Contains(t, content, "data:image/png;base64,")
	dataPath, _ := m.Resolve("src/data.bin")
	assert.Contains(t, content, `"/`+dataPath+`"`)

	assert.True(t, testutil.FileExists(t, filepath.Join(out, "stats.json")))
	assert.False(t, testutil.FileExists(t, filepath.Join(out, synthfs.LockFile)), "lock is released")
	assert.ElementsMatch(t, result.Written, keys(testutil.ReadTree(t, out)))
}

func TestBuild_ServerSingleChunk(t *testing.T) {
	_, cfg := setup(t, nil)

	result, err := build(t, cfg, "server")
	require.NoError(t, err)

	require.Len(t, result.Emission.Chunks, 1)
	assert.Equal(t, []string{"server"}, keys(result.Manifest.AssetsByChunkName))
	assert.Nil(t, result.Stats, "server target has stats disabled")
}

func TestBuild_Deterministic(t *testing.T) {
	root, cfg := setup(t, nil)
	out := filepath.Join(root, "dist", "browser")

	first, err := build(t, cfg, "browser")
	require.NoError(t, err)
	testutil.CreateFile(t, out, "stale/old.js", "stale")

	second, err := build(t, cfg, "browser")
	require.NoError(t, err)

	assert.Equal(t, first.Manifest.Hash, second.Manifest.Hash)
	assert.Equal(t, first.Manifest.Files, second.Manifest.Files)
	assert.False(t, testutil.FileExists(t, filepath.Join(out, "stale", "old.js")), "output root is cleaned")
}

func TestBuild_FailureLeavesPreviousOutput(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, project())
	testutil.CreateFile(t, root, "assetpipe.toml", `
[[rules]]
name = "scripts"
group = "code"
test = ['\.js$']
chain = [{ name = "script" }]

[[rules]]
name = "styles"
group = "code"
test = ['\.css$']
chain = [{ name = "css" }]

[[rules]]
name = "binary"
group = "code"
test = ['\.(png|bin)$']
chain = [{ name = "file" }]
`)
	cfg, err := config.Load(config.LoadOptions{Dir: root, SkipEnv: true})
	require.NoError(t, err)

	_, err = build(t, cfg, "browser")
	require.NoError(t, err)
	out := filepath.Join(root, "dist", "browser")
	before := testutil.ReadTree(t, out)

	testutil.CreateFile(t, root, "src/main.js", "import './shader.glsl';\n")
	testutil.CreateFile(t, root, "src/shader.glsl", "void main() {}")

	_, err = build(t, cfg, "browser")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnmatchedAsset))
	assert.Equal(t, []string{"src/shader.glsl"}, errors.GetErrorDetails(err)["paths"])

	assert.Equal(t, before, testutil.ReadTree(t, out), "a failed build writes nothing")
}

func TestBuild_Locked(t *testing.T) {
	root, cfg := setup(t, nil)
	out := filepath.Join(root, "dist", "browser")
	testutil.CreateFile(t, out, synthfs.LockFile, "12345\n")

	_, err := build(t, cfg, "browser")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrOutputLocked))
	assert.Equal(t, []string{synthfs.LockFile}, keys(testutil.ReadTree(t, out)))
}

func TestBuild_DryRun(t *testing.T) {
	root, cfg := setup(t, nil)

	result, err := build(t, cfg, "browser", func(o *BuildOptions) { o.DryRun = true })
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.NotEmpty(t, result.Manifest.Files)

	_, err = os.Stat(filepath.Join(root, "dist"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_SourceOverride(t *testing.T) {
	_, cfg := setup(t, nil)

	result, err := build(t, cfg, "server", func(o *BuildOptions) {
		o.Source = testutil.MapFS(testutil.FileTree{"src/server.js": "console.log('mem');\n"})
		o.DryRun = true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/server.js"}, result.Emission.Chunks[0].Modules)
}

func TestNewPlan(t *testing.T) {
	_, cfg := setup(t, nil)

	t.Run("flags and mode override config", func(t *testing.T) {
		plan, err := NewPlan(PlanOptions{Config: cfg, Target: "browser", Mode: "test", Flags: map[string]string{"API": "x"}})
		require.NoError(t, err)
		assert.Equal(t, "test", string(plan.Env.Mode()))
		v, ok := plan.Env.Flag("API")
		assert.True(t, ok)
		assert.Equal(t, "x", v)
		assert.Equal(t, []string{"main"}, plan.Entries.Names())
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := NewPlan(PlanOptions{Config: cfg, Target: "edge"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := NewPlan(PlanOptions{Config: cfg, Target: "browser", Mode: "staging"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

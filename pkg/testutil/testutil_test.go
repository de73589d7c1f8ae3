package testutil

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadTree(t *testing.T) {
	root := t.TempDir()
	tree := FileTree{
		"src/main.js":           "import './a.js';\n",
		"src/a.js":              "export default 1;\n",
		"src/styles/main.css":   "body {}\n",
		"static/media/logo.png": "png",
	}

	WriteTree(t, root, tree)

	assert.Equal(t, tree, ReadTree(t, root))
	assert.True(t, DirExists(t, root+"/src/styles"))
	assert.True(t, FileExists(t, root+"/src/a.js"))
	assert.False(t, FileExists(t, root+"/src"))
	assert.Equal(t, []string{"src/a.js", "src/main.js", "src/styles/main.css"}, PathsWithPrefix(tree, "src/"))
}

func TestMapFS(t *testing.T) {
	fsys := MapFS(FileTree{"src/main.js": "x"})

	data, err := fs.ReadFile(fsys, "src/main.js")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

package topics

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFS() fstest.MapFS {
	return fstest.MapFS{
		"topics/patterns.md":        {Data: []byte("# Patterns\n\nHow paths are matched")},
		"topics/option-dry-run.txt": {Data: []byte("Plan without writing")},
		"topics/notes.json":         {Data: []byte("{}")},
	}
}

func TestTopicManager_Scan(t *testing.T) {
	tm := New(topicFS())
	require.NoError(t, tm.scanTopics())

	assert.Equal(t, []string{"option-dry-run", "patterns"}, tm.ListTopics())

	topic, ok := tm.GetTopic("patterns")
	require.True(t, ok)
	assert.Equal(t, "topics/patterns.md", topic.FilePath)

	for _, name := range []string{"dry-run", "--dry-run", "option-dry-run"} {
		topic, ok := tm.GetTopic(name)
		require.True(t, ok, name)
		assert.Equal(t, "Plan without writing", topic.Content)
	}

	_, ok = tm.GetTopic("notes")
	assert.False(t, ok, "unsupported extensions are ignored")
}

func TestTopicManager_CustomExtensions(t *testing.T) {
	tm := NewWithOptions(topicFS(), Options{Extensions: []string{".json"}})
	require.NoError(t, tm.scanTopics())
	assert.Equal(t, []string{"notes"}, tm.ListTopics())
}

func TestTopicManager_NilFS(t *testing.T) {
	tm := New(nil)
	require.NoError(t, tm.scanTopics())
	assert.Empty(t, tm.ListTopics())
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	root := &cobra.Command{Use: "tool", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(&cobra.Command{Use: "build", Short: "Build things", Run: func(*cobra.Command, []string) {}})

	_, err := Initialize(root, topicFS())
	require.NoError(t, err)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, &out
}

func TestInitialize_HelpCommand(t *testing.T) {
	t.Run("lists topics", func(t *testing.T) {
		root, out := newRoot(t)
		root.SetArgs([]string{"help", "topics"})
		require.NoError(t, root.Execute())

		assert.Contains(t, out.String(), "General topics:\n  patterns")
		assert.Contains(t, out.String(), "Option topics:\n  --dry-run")
		assert.Contains(t, out.String(), "'tool help <topic>'")
	})

	t.Run("shows a topic", func(t *testing.T) {
		root, out := newRoot(t)
		root.SetArgs([]string{"help", "dry-run"})
		require.NoError(t, root.Execute())
		assert.Equal(t, "Plan without writing", out.String())
	})

	t.Run("falls back to command help", func(t *testing.T) {
		root, out := newRoot(t)
		root.SetArgs([]string{"help", "build"})
		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "Build things")
	})

	t.Run("replaces the default help command", func(t *testing.T) {
		root, _ := newRoot(t)
		root.SetArgs([]string{"build"})
		require.NoError(t, root.Execute())
		count := 0
		for _, c := range root.Commands() {
			if c.Name() == "help" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestPlainRenderer(t *testing.T) {
	r := &PlainRenderer{}
	assert.Equal(t, "# x", r.Render("# x", ".md"))
}

func TestGlamourRenderer_PassesNonMarkdown(t *testing.T) {
	r := NewGlamourRenderer()
	assert.Equal(t, "plain *text*", r.Render("plain *text*", ".txt"))
}

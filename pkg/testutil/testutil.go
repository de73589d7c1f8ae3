package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
)

// FileTree maps slash-separated relative paths to file content
type FileTree map[string]string

// Paths returns the tree's paths sorted
func (tree FileTree) Paths() []string {
	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MapFS returns the tree as an in-memory filesystem
func MapFS(tree FileTree) fstest.MapFS {
	fsys := make(fstest.MapFS, len(tree))
	for p, content := range tree {
		fsys[p] = &fstest.MapFile{Data: []byte(content), Mode: 0644}
	}
	return fsys
}

// WriteTree writes tree under root, creating directories as needed
func WriteTree(t *testing.T, root string, tree FileTree) {
	t.Helper()

	for _, p := range tree.Paths() {
		CreateFile(t, root, p, tree[p])
	}
}

// ReadTree returns every regular file under root keyed by its slash path
func ReadTree(t *testing.T, root string) FileTree {
	t.Helper()

	tree := make(FileTree)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to read tree %s: %v", root, err)
	}
	return tree
}

// CreateFile creates a file with the given content under dir.
// It fails the test if the file cannot be created.
func CreateFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	return path
}

// FileExists checks if a file exists and is not a directory.
func FileExists(t *testing.T, path string) bool {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(t *testing.T, path string) bool {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ReadFile reads the content of a file and returns it as a string.
// It fails the test if the file cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// PathsWithPrefix returns the sorted paths of tree that start with prefix
func PathsWithPrefix(tree FileTree, prefix string) []string {
	var out []string
	for _, p := range tree.Paths() {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

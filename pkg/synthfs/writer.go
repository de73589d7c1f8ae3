// Package synthfs writes build output through a go-synthfs operation
// pipeline. A Writer owns one output root: it takes the root's lock, empties
// it and then writes every file of a build in a single pipeline run.
package synthfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/assetpipe/pkg/errors"
	"github.com/arthur-debert/assetpipe/pkg/logging"
	"github.com/arthur-debert/assetpipe/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

// LockFile is created in the output root while a build writes to it
const LockFile = ".assetpipe.lock"

const (
	dirMode  fs.FileMode = 0755
	fileMode fs.FileMode = 0644
)

// File is one file to write, relative to the output root
type File struct {
	Path    string
	Content []byte
}

// Writer manages one output root
type Writer struct {
	logger zerolog.Logger
	fs     types.FS
	root   string
	dryRun bool
}

// NewWriter creates a writer for root. fsys is used for locking and
// cleaning; file content goes through a synthfs pipeline rooted at root.
func NewWriter(fsys types.FS, root string) *Writer {
	return &Writer{
		logger: logging.GetLogger("synthfs.writer").With().Str("root", root).Logger(),
		fs:     fsys,
		root:   root,
	}
}

// NewDryRunWriter creates a writer that only logs what it would do
func NewDryRunWriter(fsys types.FS, root string) *Writer {
	w := NewWriter(fsys, root)
	w.dryRun = true
	return w
}

// Root returns the output root
func (w *Writer) Root() string { return w.root }

// Acquire takes the output root's lock. The returned function releases it.
func (w *Writer) Acquire() (func(), error) {
	if w.dryRun {
		return func() {}, nil
	}
	if err := w.fs.MkdirAll(w.root, dirMode); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create output root %s", w.root)
	}

	lockPath := filepath.Join(w.root, LockFile)
	f, err := w.fs.OpenExclusive(lockPath, fileMode)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.Newf(errors.ErrOutputLocked, "output root %s is locked by another build", w.root).
				WithDetail("lock", lockPath)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to lock %s", w.root)
	}
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Close()

	w.logger.Debug().Str("lock", lockPath).Msg("Output root locked")
	return func() {
		if err := w.fs.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			w.logger.Warn().Err(err).Str("lock", lockPath).Msg("Failed to release lock")
		}
	}, nil
}

// Clean removes everything in the output root except the lock
func (w *Writer) Clean() error {
	entries, err := w.fs.ReadDir(w.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read output root %s", w.root)
	}

	for _, entry := range entries {
		if entry.Name() == LockFile {
			continue
		}
		target := filepath.Join(w.root, entry.Name())
		if w.dryRun {
			w.logger.Info().Str("path", target).Msg("Would remove")
			continue
		}
		if err := w.fs.RemoveAll(target); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", target)
		}
	}
	w.logger.Debug().Int("removed", len(entries)).Msg("Output root cleaned")
	return nil
}

// Write creates files and their directories in one pipeline run
func (w *Writer) Write(ctx context.Context, files []File) error {
	if len(files) == 0 {
		w.logger.Info().Msg("No files to write")
		return nil
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		if err := validateRelative(f.Path); err != nil {
			return err
		}
		for d := path.Dir(f.Path); d != "." && d != "/"; d = path.Dir(d) {
			dirs[d] = true
		}
	}

	if w.dryRun {
		for _, f := range files {
			w.logger.Info().Str("path", f.Path).Int("bytes", len(f.Content)).Msg("Would write")
		}
		return nil
	}

	// Parents sort before their children.
	dirList := make([]string, 0, len(dirs))
	for d := range dirs {
		dirList = append(dirList, d)
	}
	sort.Strings(dirList)

	pipeline := synthfs.NewMemPipeline()
	for _, d := range dirList {
		op := operations.NewCreateDirectoryOperation(core.OperationID("mkdir-"+d), d)
		op.SetItem(&directoryItem{path: d, mode: dirMode})
		if err := pipeline.Add(synthfs.NewOperationsPackageAdapter(op)); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "failed to add operation to pipeline")
		}
	}
	for _, f := range files {
		op := operations.NewCreateFileOperation(core.OperationID("write-"+f.Path), f.Path)
		op.SetItem(&fileItem{path: f.Path, content: f.Content, mode: fileMode})
		if err := pipeline.Add(synthfs.NewOperationsPackageAdapter(op)); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "failed to add operation to pipeline")
		}
	}

	w.logger.Info().Int("dirs", len(dirList)).Int("files", len(files)).Msg("Executing operations")

	result := synthfs.NewExecutor().Run(ctx, pipeline, filesystem.NewOSFileSystem(w.root))
	if result.GetError() != nil {
		w.logger.Error().Err(result.GetError()).Msg("Pipeline execution failed")
		return errors.Wrapf(result.GetError(), errors.ErrFileWrite, "failed to write output to %s", w.root)
	}
	return nil
}

// WriteAtomic replaces one file by writing a temp file and renaming it
func (w *Writer) WriteAtomic(name string, content []byte) error {
	if err := validateRelative(name); err != nil {
		return err
	}
	target := filepath.Join(w.root, filepath.FromSlash(name))
	if w.dryRun {
		w.logger.Info().Str("path", target).Int("bytes", len(content)).Msg("Would write")
		return nil
	}
	if err := w.fs.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(target))
	}
	tmp := target + ".tmp"
	if err := w.fs.WriteFile(tmp, content, fileMode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", tmp)
	}
	if err := w.fs.Rename(tmp, target); err != nil {
		_ = w.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", target)
	}
	return nil
}

// validateRelative keeps every write inside the output root
func validateRelative(p string) error {
	clean := path.Clean(p)
	if p == "" || path.IsAbs(p) || clean == ".." || strings.HasPrefix(clean, "../") {
		return errors.Newf(errors.ErrInvalidInput, "output path %q escapes the output root", p).
			WithDetail("path", p)
	}
	return nil
}

// fileItem implements the item interface of file creation operations
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

// directoryItem implements the item interface of directory operations
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }

// Package fsutil provides the file-system helpers available to task bodies.
// Paths are resolved against the project directory, and every helper traces
// its call. Creating a directory that exists, or removing one that does not,
// is not an error.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/thruflo/brigadier/internal/logging"
)

// DefaultFileMode is used by Write when no mode is given.
const DefaultFileMode = 0o644

// FS resolves and manipulates paths under a root directory.
type FS struct {
	root string
	log  *logging.Logger
}

// New creates an FS rooted at root.
func New(root string, log *logging.Logger) *FS {
	return &FS{root: root, log: log}
}

// Root returns the directory relative paths are resolved against.
func (f *FS) Root() string {
	return f.root
}

// Path resolves name against the root.
func (f *FS) Path(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(f.root, name)
}

type writeOptions struct {
	mode  os.FileMode
	strip bool
}

// WriteOption configures Write and Copy.
type WriteOption func(*writeOptions)

// WithMode sets the permission bits of a written file.
func WithMode(mode os.FileMode) WriteOption {
	return func(o *writeOptions) {
		o.mode = mode
	}
}

// WithStrip removes surrounding whitespace and every tab and line break
// from the content before writing.
func WithStrip() WriteOption {
	return func(o *writeOptions) {
		o.strip = true
	}
}

// Read returns the contents of name as text.
func (f *FS) Read(name string) (string, error) {
	data, err := f.ReadBytes(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadBytes returns the contents of name.
func (f *FS) ReadBytes(name string) ([]byte, error) {
	path := f.Path(name)
	f.log.Trace("read", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// Write replaces the contents of name, creating missing parent directories.
func (f *FS) Write(name string, content []byte, opts ...WriteOption) error {
	o := writeOptions{mode: DefaultFileMode}
	for _, opt := range opts {
		opt(&o)
	}

	path := f.Path(name)
	f.log.Trace("write", path, len(content))

	if o.strip {
		content = []byte(Strip(string(content)))
	}

	release := f.log.Indent()
	err := f.Mkdir(filepath.Dir(path))
	release()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, o.mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Copy copies the file from to the file to.
func (f *FS) Copy(from, to string, opts ...WriteOption) error {
	f.log.Trace("copy", f.Path(from), f.Path(to))
	defer f.log.Indent()()

	data, err := f.ReadBytes(from)
	if err != nil {
		return err
	}
	return f.Write(to, data, opts...)
}

// Exists reports whether name exists.
func (f *FS) Exists(name string) bool {
	path := f.Path(name)
	_, err := os.Stat(path)
	exists := err == nil
	f.log.Trace("exists", path, exists)
	return exists
}

// Mkdir creates name and any missing parents.
func (f *FS) Mkdir(name string) error {
	path := f.Path(name)
	f.log.Trace("mkdir", path)

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		f.log.Trace("  already exists")
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// Rmdir removes name and everything below it.
func (f *FS) Rmdir(name string) error {
	path := f.Path(name)
	f.log.Trace("rmdir", path)

	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		f.log.Trace("  no such directory")
		return nil
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", path, err)
	}
	return nil
}

// Symlink creates dst pointing at src.
func (f *FS) Symlink(src, dst string) error {
	src = f.Path(src)
	dst = f.Path(dst)
	f.log.Trace("symlink", src, dst)

	err := os.Symlink(src, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		f.log.Trace("  already exists")
		return nil
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("permission denied for %s", src)
	default:
		return fmt.Errorf("failed to create symlink %s: %w", dst, err)
	}
}

// Files returns the regular files under the root matching pattern, which may
// use ** to cross directories. Hidden entries are included. Results are
// slash-separated, relative to the root and sorted.
func (f *FS) Files(pattern string) ([]string, error) {
	f.log.Trace("files", f.root, pattern)
	return f.glob(pattern, func(info fs.FileInfo) bool { return info.Mode().IsRegular() })
}

// Dirs is like Files but returns directories.
func (f *FS) Dirs(pattern string) ([]string, error) {
	f.log.Trace("dirs", f.root, pattern)
	return f.glob(pattern, func(info fs.FileInfo) bool { return info.IsDir() })
}

func (f *FS) glob(pattern string, keep func(fs.FileInfo) bool) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	fsys := os.DirFS(f.root)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to match %q: %w", pattern, err)
	}

	out := make([]string, 0, len(matches))
	for _, match := range matches {
		info, err := fs.Stat(fsys, match)
		if err != nil {
			continue
		}
		if keep(info) {
			out = append(out, match)
		}
	}
	sort.Strings(out)
	return out, nil
}

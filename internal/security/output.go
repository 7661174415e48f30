package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	FilePermSecure = 0600 // File: owner rw only
	DirPermSecure  = 0700 // Directory: owner rwx only
)

var (
	ErrPathEscapes  = errors.New("path escapes working directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
	ErrFileExists   = errors.New("file already exists")
)

// OutputDir writes files confined to a root directory using Go 1.24's os.Root API.
type OutputDir struct {
	root *os.Root
	dir  string
}

// New opens dir as the output root.
func New(dir string) (*OutputDir, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open output root: %w", err)
	}

	return &OutputDir{root: root, dir: absPath}, nil
}

// Close releases the root handle.
func (o *OutputDir) Close() error {
	if o.root != nil {
		return o.root.Close()
	}
	return nil
}

// ValidateAndNormalize validates a user-provided path and returns a normalized
// relative path with forward slashes. Empty, absolute and escaping paths are
// rejected, as is anything filepath.IsLocal refuses.
func (o *OutputDir) ValidateAndNormalize(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	if !filepath.IsLocal(userPath) {
		if filepath.IsAbs(userPath) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, userPath)
		}
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	relPath, err := filepath.Rel(o.dir, filepath.Join(o.dir, filepath.Clean(userPath)))
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path: %w", err)
	}
	if strings.HasPrefix(relPath, "..") || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	return filepath.ToSlash(relPath), nil
}

// WriteFile writes data with owner-only permissions, creating parent
// directories. An existing file is replaced only when overwrite is set.
func (o *OutputDir) WriteFile(userPath string, data []byte, overwrite bool) (string, error) {
	rel, err := o.ValidateAndNormalize(userPath)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	if dir := path.Dir(rel); dir != "." {
		if err := o.root.MkdirAll(filepath.FromSlash(dir), DirPermSecure); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	f, err := o.root.OpenFile(filepath.FromSlash(rel), flags, FilePermSecure)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrFileExists, rel)
		}
		return "", fmt.Errorf("failed to create %s: %w", rel, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", rel, err)
	}

	return rel, nil
}

package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/phrazzld/comix-bridge/internal/resource"
)

// Library confines request paths to one directory tree.
type Library struct {
	root string
}

// NewLibrary resolves root to an absolute, symlink-free directory.
func NewLibrary(root string) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat library root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library root %q is not a directory", root)
	}
	return &Library{root: abs}, nil
}

// Root returns the resolved library directory.
func (l *Library) Root() string {
	return l.root
}

// Resolve maps a slash-separated path relative to the library to a file
// path inside it. Symlinks pointing out of the library are rejected.
func (l *Library) Resolve(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", ErrOutsideLibrary
	}

	resolved, err := filepath.EvalSymlinks(filepath.Join(l.root, local))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fs.ErrNotExist
		}
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	within, err := filepath.Rel(l.root, resolved)
	if err != nil || !filepath.IsLocal(within) {
		return "", ErrOutsideLibrary
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: path is a directory", ErrInvalidParameter)
	}
	return resolved, nil
}

// Open resolves rel and opens it for reading. The caller owns the returned
// descriptor.
func (l *Library) Open(rel string) (fd int, path string, err error) {
	path, err = l.Resolve(rel)
	if err != nil {
		return -1, "", err
	}
	fd, err = resource.OpenDescriptor(path)
	if err != nil {
		return -1, "", err
	}
	return fd, path, nil
}

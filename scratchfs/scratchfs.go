// Package scratchfs owns a single Worker's scratch directory: the host
// path bind-mounted into the sandbox at /box. It treats file names as
// trusted opaque tokens and does no traversal validation; internal/api
// passes request names through unchecked as well.
package scratchfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// FS is a scratch root rooted at Root(). The zero value is not usable; use
// New.
type FS struct {
	root string
}

// New creates the scratch root directory (and any missing parents) and
// returns an FS rooted there. Failure here is fatal to the owning Worker
// — the caller should panic or abort startup, not retry.
func New(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch root %s: %w", root, err)
	}
	return &FS{root: root}, nil
}

// Root returns the scratch root's host path.
func (f *FS) Root() string {
	return f.root
}

// join resolves name under the scratch root. name is trusted.
func (f *FS) join(name string) string {
	return filepath.Join(f.root, name)
}

// CreateFile writes content to name under the scratch root, creating or
// truncating it, and sets the executable bits (0o111) if executable is
// true.
func (f *FS) CreateFile(name string, content []byte, executable bool) error {
	full := f.join(name)
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("writing scratch file %s: %w", name, err)
	}
	if executable {
		if err := addExecBits(full); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads name from the scratch root. If executable is true, the
// executable bits are set on the file before it is read.
func (f *FS) ReadFile(name string, executable bool) ([]byte, error) {
	full := f.join(name)
	if executable {
		if err := addExecBits(full); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading scratch file %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether name is present under the scratch root.
func (f *FS) Exists(name string) bool {
	_, err := os.Stat(f.join(name))
	return err == nil
}

// DeleteRoot best-effort removes the entire scratch root. Errors are
// swallowed by the caller (worker.Cleanup never raises), but are
// returned here so tests can assert on them directly.
func (f *FS) DeleteRoot() error {
	return os.RemoveAll(f.root)
}

// ReadFileVerbatim reads path exactly as given, not scratch-relative. It
// backs copy_in Local sources, which name an arbitrary caller-given path
// to stage into scratch rather than a token already under the scratch
// root. If executable is true, the executable bits are stamped on path
// before it is read.
func ReadFileVerbatim(path string, executable bool) ([]byte, error) {
	if executable {
		if err := addExecBits(path); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}

func addExecBits(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s for exec bit: %w", path, err)
	}
	mode := info.Mode().Perm() | 0o111
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("chmod %s exec bit: %w", path, err)
	}
	return nil
}

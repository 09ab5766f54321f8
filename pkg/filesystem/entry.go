package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jtele2/csync/pkg/types"
)

// EntryKind tags a FileEntry.
type EntryKind int

const (
	KindMissing EntryKind = iota
	KindFile
	KindDirectory
	KindSymlink
)

func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "missing"
	}
}

// FileEntry is a path together with what it is on disk. Symlinks are never
// followed when classifying.
type FileEntry struct {
	Path string
	Kind EntryKind
	Mode fs.FileMode
	// Target is set for symlinks.
	Target string
}

// Exists reports whether anything, including a dangling symlink, is at Path.
func (e FileEntry) Exists() bool {
	return e.Kind != KindMissing
}

// Inspect classifies path.
func Inspect(fsys types.FS, path string) (FileEntry, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileEntry{Path: path, Kind: KindMissing}, nil
		}
		return FileEntry{}, err
	}

	entry := FileEntry{Path: path, Mode: info.Mode().Perm()}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		entry.Kind = KindSymlink
		target, err := fsys.Readlink(path)
		if err != nil {
			return FileEntry{}, fmt.Errorf("failed to read symlink %s: %w", path, err)
		}
		entry.Target = target
	case info.IsDir():
		entry.Kind = KindDirectory
	default:
		entry.Kind = KindFile
	}
	return entry, nil
}

// CopyTo copies the entry to dest. Directories are copied recursively and
// symlinks are recreated rather than dereferenced. Parent directories of
// dest are created as needed.
func (e FileEntry) CopyTo(fsys types.FS, dest string) error {
	if err := fsys.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dest, err)
	}

	switch e.Kind {
	case KindFile:
		data, err := fsys.ReadFile(e.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", e.Path, err)
		}
		if err := fsys.WriteFile(dest, data, e.Mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return nil

	case KindSymlink:
		if existing, err := Inspect(fsys, dest); err == nil && existing.Exists() {
			if err := existing.Remove(fsys); err != nil {
				return err
			}
		}
		if err := fsys.Symlink(e.Target, dest); err != nil {
			return fmt.Errorf("failed to recreate symlink %s: %w", dest, err)
		}
		return nil

	case KindDirectory:
		if err := fsys.MkdirAll(dest, e.Mode|0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dest, err)
		}
		children, err := fsys.ReadDir(e.Path)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", e.Path, err)
		}
		for _, child := range children {
			childEntry, err := Inspect(fsys, filepath.Join(e.Path, child.Name()))
			if err != nil {
				return err
			}
			if err := childEntry.CopyTo(fsys, filepath.Join(dest, child.Name())); err != nil {
				return err
			}
		}
		return nil

	default:
		return &fs.PathError{Op: "copy", Path: e.Path, Err: fs.ErrNotExist}
	}
}

// Remove deletes the entry. Directories are removed with their contents;
// a symlink is removed without touching its target.
func (e FileEntry) Remove(fsys types.FS) error {
	switch e.Kind {
	case KindMissing:
		return nil
	case KindDirectory:
		if err := fsys.RemoveAll(e.Path); err != nil {
			return fmt.Errorf("failed to remove directory %s: %w", e.Path, err)
		}
	default:
		if err := fsys.Remove(e.Path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", e.Path, err)
		}
	}
	return nil
}

// ResolvesTo reports whether link is a symlink whose fully resolved target is
// the same location as want's resolved path.
func ResolvesTo(fsys types.FS, link, want string) bool {
	entry, err := Inspect(fsys, link)
	if err != nil || entry.Kind != KindSymlink {
		return false
	}
	got, err := filepath.EvalSymlinks(link)
	if err != nil {
		return false
	}
	expected, err := filepath.EvalSymlinks(want)
	if err != nil {
		return false
	}
	return got == expected
}

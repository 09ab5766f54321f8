package backup

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/paths"
)

// writeArchive streams the configs tree into dest through a temp file so a
// failed run never leaves a truncated archive under a valid name.
func (a *Archiver) writeArchive(dest string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".backup-*.tmp")
	if err != nil {
		return errors.Wrap(err, errors.ErrBackup, "failed to create temp archive")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	gz := gzip.NewWriter(tmp)
	tw := tar.NewWriter(gz)

	root := a.paths.ConfigsDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "failed to read %s", root)
	}
	for _, entry := range entries {
		if a.excluded(entry.Name()) {
			continue
		}
		if err := addTree(tw, root, entry.Name()); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrBackup, "failed to finish tar stream")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, errors.ErrBackup, "failed to finish gzip stream")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrBackup, "failed to close archive")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "failed to move archive into place")
	}
	return nil
}

// addTree writes rel (relative to root) and everything below it. Symlinks
// are stored as links.
func addTree(tw *tar.Writer, root, rel string) error {
	return filepath.Walk(filepath.Join(root, rel), func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return errors.Wrapf(walkErr, errors.ErrBackup, "failed to read %s", path)
		}
		name, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to name %s", path)
		}

		link := ""
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return errors.Wrapf(err, errors.ErrBackup, "failed to read link %s", path)
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "unsupported file %s", path)
		}
		hdr.Name = filepath.ToSlash(name)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to write header for %s", name)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to open %s", path)
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(tw, f); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to archive %s", path)
		}
		return nil
	})
}

// extractArchive unpacks the open archive f over dest. Existing files are
// overwritten; members that would land outside dest are rejected before
// anything is written for them.
func extractArchive(f *os.File, dest string) error {
	src := f.Name()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "%s is not a gzip archive", filepath.Base(src))
	}
	defer func() { _ = gz.Close() }()

	// Members are checked against the resolved destination so a link
	// restored earlier in the stream cannot carry later members outside it.
	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "failed to resolve %s", dest)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "corrupt archive %s", filepath.Base(src))
		}

		name := strings.TrimSuffix(hdr.Name, "/")
		if err := paths.ValidateRelative(name); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "refusing archive member %q", hdr.Name)
		}
		target := filepath.Join(dest, filepath.FromSlash(name))
		if err := checkParent(root, target); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "refusing archive member %q", hdr.Name)
		}

		if err := extractMember(tr, hdr, target); err != nil {
			return err
		}
	}
}

func extractMember(r io.Reader, hdr *tar.Header, target string) error {
	mode := os.FileMode(hdr.Mode).Perm()

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "failed to create parent of %s", target)
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, mode|0700); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to create %s", target)
		}
	case tar.TypeSymlink:
		if err := removeExisting(target); err != nil {
			return err
		}
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to restore link %s", target)
		}
	case tar.TypeReg:
		// Never write through a link that happens to sit at target.
		if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
			if err := os.Remove(target); err != nil {
				return errors.Wrapf(err, errors.ErrBackup, "failed to replace link %s", target)
			}
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
		if err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to write %s", target)
		}
		// #nosec G110 -- archives are produced by this tool from the user's own files
		if _, err := io.Copy(out, r); err != nil {
			_ = out.Close()
			return errors.Wrapf(err, errors.ErrBackup, "failed to write %s", target)
		}
		if err := out.Close(); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to write %s", target)
		}
		if err := os.Chmod(target, mode); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "failed to set mode on %s", target)
		}
	}
	return nil
}

// checkParent resolves the closest existing ancestor of target and fails
// when it lies outside root.
func checkParent(root, target string) error {
	dir := filepath.Dir(target)
	for {
		if _, err := os.Lstat(dir); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "failed to resolve %s", dir)
	}
	if !paths.ContainsPath(root, resolved) {
		return errors.Newf(errors.ErrBackup, "%s resolves outside %s", target, root)
	}
	return nil
}

func removeExisting(target string) error {
	info, err := os.Lstat(target)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		err = os.RemoveAll(target)
	} else {
		err = os.Remove(target)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "failed to replace %s", target)
	}
	return nil
}

package marked

import (
	"context"
	"path/filepath"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/filesystem"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/vcs"
)

// State of a marked entry in the home directory.
type State string

const (
	StateLinked   State = "linked"
	StateConflict State = "conflict"
	StateMissing  State = "missing"
)

// Entry is one marked path with its current state.
type Entry struct {
	Path           string `json:"path" yaml:"path"`
	HomePath       string `json:"home_path" yaml:"home_path"`
	ExternalPath   string `json:"external_path" yaml:"external_path"`
	State          State  `json:"state" yaml:"state"`
	ExternalExists bool   `json:"external_exists" yaml:"external_exists"`
}

// Manager marks, unmarks and reconciles entries.
type Manager struct {
	fs       types.FS
	paths    *paths.Paths
	vcs      vcs.VersionControl
	reporter output.Reporter
}

// New creates a Manager.
func New(fs types.FS, p *paths.Paths, v vcs.VersionControl, reporter output.Reporter) *Manager {
	return &Manager{fs: fs, paths: p, vcs: v, reporter: reporter}
}

// relToConfigs turns an absolute path under the configs dir into the form
// git expects when run in the working copy.
func (m *Manager) relToConfigs(abs string) string {
	rel, err := filepath.Rel(m.paths.ConfigsDir(), abs)
	if err != nil {
		return abs
	}
	return rel
}

// Mark relocates path into external/ and links it back.
func (m *Manager) Mark(ctx context.Context, path string) error {
	logger := logging.GetLogger("marked")

	abs, rel, err := m.paths.ResolveUnderHome(path)
	if err != nil {
		return err
	}
	if paths.ContainsPath(m.paths.ConfigsDir(), abs) {
		return errors.Newf(errors.ErrInvalidInput, "%s is inside the configs directory", abs)
	}

	original, err := filesystem.Inspect(m.fs, abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", abs)
	}
	if !original.Exists() {
		return errors.Newf(errors.ErrNotFound, "file not found: %s", abs).WithDetail("path", abs)
	}

	entries, err := m.Load()
	if err != nil {
		return err
	}
	if contains(entries, rel) {
		return errors.Newf(errors.ErrAlreadyMarked, "file already marked: %s", abs).WithDetail("path", rel)
	}

	external := m.paths.ExternalPath(rel)
	stale, err := filesystem.Inspect(m.fs, external)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", external)
	}
	if err := stale.Remove(m.fs); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to clear %s", external)
	}

	// The original is only touched once the copy is complete.
	if err := original.CopyTo(m.fs, external); err != nil {
		_ = m.fs.RemoveAll(external)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to copy %s into external", abs)
	}
	if err := original.Remove(m.fs); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s after copying", abs)
	}
	if err := m.fs.Symlink(external, abs); err != nil {
		// Put the content back so the user is not left without it.
		if copied, inspectErr := filesystem.Inspect(m.fs, external); inspectErr == nil {
			_ = copied.CopyTo(m.fs, abs)
		}
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", abs)
	}

	entries = append(entries, rel)
	if err := m.save(entries); err != nil {
		return err
	}
	logger.Info().Str("path", rel).Str("kind", original.Kind.String()).Msg("Marked")

	if err := m.vcs.Add(ctx, m.relToConfigs(external), paths.MarkedFilesListName); err != nil {
		return err
	}
	if err := m.vcs.Commit(ctx, "Mark file for sync: "+rel); err != nil {
		return err
	}

	m.reporter.Success("Marked for sync: %s", abs)
	m.reporter.Info("Linked to: %s", external)
	return nil
}

// Unmark materializes the external copy back in place and forgets the entry.
func (m *Manager) Unmark(ctx context.Context, path string) error {
	logger := logging.GetLogger("marked")

	abs, rel, err := m.paths.ResolveUnderHome(path)
	if err != nil {
		return err
	}

	entries, err := m.Load()
	if err != nil {
		return err
	}
	if !contains(entries, rel) {
		return errors.Newf(errors.ErrNotMarked, "file not marked: %s", abs).WithDetail("path", rel)
	}

	external := m.paths.ExternalPath(rel)
	home, err := filesystem.Inspect(m.fs, abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", abs)
	}
	extCopy, err := filesystem.Inspect(m.fs, external)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", external)
	}
	if home.Kind == filesystem.KindSymlink && extCopy.Exists() {
		if err := home.Remove(m.fs); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove link %s", abs)
		}
		if err := extCopy.CopyTo(m.fs, abs); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to restore %s", abs)
		}
	}

	if err := m.save(without(entries, rel)); err != nil {
		return err
	}
	logger.Info().Str("path", rel).Msg("Unmarked")

	if err := m.vcs.Remove(ctx, m.relToConfigs(external)); err != nil {
		logger.Debug().Err(err).Str("path", rel).Msg("git rm failed, removing from disk")
	}
	if err := m.fs.RemoveAll(external); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", external)
	}

	if err := m.vcs.Add(ctx, paths.MarkedFilesListName); err != nil {
		m.reporter.Warn("Could not stage marked files list: %v", err)
	} else if err := m.vcs.Commit(ctx, "Unmark file from sync: "+rel); err != nil {
		m.reporter.Warn("Could not commit unmark of %s: %v", rel, err)
	}

	m.reporter.Success("Unmarked from sync: %s", abs)
	return nil
}

// Reconcile recreates missing or stale links for every entry. Entries whose
// external copy is gone are reported and skipped. In dry run nothing is
// written and the links that would be created are counted.
func (m *Manager) Reconcile(dryRun bool) (int, error) {
	entries, err := m.Load()
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	m.reporter.Info("Syncing marked files...")
	count := 0
	for _, rel := range entries {
		homePath := m.paths.HomePath(rel)
		external := m.paths.ExternalPath(rel)

		ext, err := filesystem.Inspect(m.fs, external)
		if err != nil {
			return count, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", external)
		}
		if !ext.Exists() {
			m.reporter.Warn("External file missing: %s", rel)
			continue
		}
		if filesystem.ResolvesTo(m.fs, homePath, external) {
			continue
		}

		current, err := filesystem.Inspect(m.fs, homePath)
		if err != nil {
			return count, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", homePath)
		}
		if current.Kind == filesystem.KindDirectory {
			m.reporter.Warn("Conflict: %s is a directory, not linking", homePath)
			continue
		}

		if dryRun {
			m.reporter.DryRun("Would link %s → %s", homePath, external)
			count++
			continue
		}

		if err := m.fs.MkdirAll(filepath.Dir(homePath), 0755); err != nil {
			return count, errors.Wrapf(err, errors.ErrFileWrite, "failed to create parent of %s", homePath)
		}
		if err := current.Remove(m.fs); err != nil {
			return count, errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", homePath)
		}
		if err := m.fs.Symlink(external, homePath); err != nil {
			return count, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", homePath)
		}
		m.reporter.Success("Linked: %s → %s", homePath, external)
		count++
	}

	if count > 0 {
		m.reporter.Success("Synced %d marked file(s)", count)
	} else {
		m.reporter.Info("All marked files already in sync")
	}
	return count, nil
}

// List returns every entry with its state.
func (m *Manager) List() ([]Entry, error) {
	entries, err := m.Load()
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, rel := range entries {
		e := Entry{
			Path:         rel,
			HomePath:     m.paths.HomePath(rel),
			ExternalPath: m.paths.ExternalPath(rel),
		}
		home, err := filesystem.Inspect(m.fs, e.HomePath)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", e.HomePath)
		}
		switch home.Kind {
		case filesystem.KindSymlink:
			e.State = StateLinked
		case filesystem.KindMissing:
			e.State = StateMissing
		default:
			e.State = StateConflict
		}
		ext, err := filesystem.Inspect(m.fs, e.ExternalPath)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", e.ExternalPath)
		}
		e.ExternalExists = ext.Exists()
		out = append(out, e)
	}
	return out, nil
}

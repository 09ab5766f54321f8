package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/paths"
)

const (
	NamePrefix = "backup-"
	NameSuffix = ".tar.gz"
	TimeLayout = "20060102-150405"

	// DefaultKeep is used when no retention is configured.
	DefaultKeep = 10
	// ChoiceLimit bounds how many archives are offered for restore.
	ChoiceLimit = 10
)

// Archive is one backup on disk.
type Archive struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// SizeMB formats the size the way listings show it.
func (a Archive) SizeMB() float64 {
	return float64(a.Size) / 1024 / 1024
}

// Chooser picks one of the offered archives and returns its index.
type Chooser func(archives []Archive) (int, error)

// Archiver creates, lists, prunes and restores archives.
type Archiver struct {
	paths           *paths.Paths
	exclude         map[string]bool
	excludeSuffixes []string
	keep            int
	now             func() time.Time
	reporter        output.Reporter
}

// New creates an Archiver using the backup section of the configuration.
func New(p *paths.Paths, cfg config.BackupConfig, reporter output.Reporter) *Archiver {
	keep := cfg.Keep
	if keep < 1 {
		keep = DefaultKeep
	}
	exclude := make(map[string]bool, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		exclude[name] = true
	}
	if reporter == nil {
		reporter = output.Discard{}
	}
	return &Archiver{
		paths:           p,
		exclude:         exclude,
		excludeSuffixes: cfg.ExcludeSuffixes,
		keep:            keep,
		now:             time.Now,
		reporter:        reporter,
	}
}

// WithClock replaces the time source used to name archives.
func (a *Archiver) WithClock(now func() time.Time) *Archiver {
	a.now = now
	return a
}

// Name returns the archive name for t.
func Name(t time.Time) string {
	return NamePrefix + t.Format(TimeLayout) + NameSuffix
}

func isArchiveName(name string) bool {
	return strings.HasPrefix(name, NamePrefix) && strings.HasSuffix(name, NameSuffix)
}

func (a *Archiver) excluded(name string) bool {
	if a.exclude[name] {
		return true
	}
	for _, suffix := range a.excludeSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// Create snapshots the configs directory and prunes old archives.
func (a *Archiver) Create() (Archive, error) {
	return a.create("")
}

// create writes a new archive and prunes, never deleting protect.
func (a *Archiver) create(protect string) (Archive, error) {
	logger := logging.GetLogger("backup")
	done := logging.LogOperationStart(logger, "backup.create")
	defer done()

	name := Name(a.now())
	dir := a.paths.BackupsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Archive{}, errors.Wrapf(err, errors.ErrBackup, "failed to create %s", dir)
	}

	a.reporter.Info("Creating backup: %s", name)
	dest := filepath.Join(dir, name)
	if err := a.writeArchive(dest); err != nil {
		return Archive{}, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return Archive{}, errors.Wrapf(err, errors.ErrBackup, "failed to stat %s", dest)
	}
	archive := Archive{Name: name, Path: dest, Size: info.Size(), ModTime: info.ModTime()}
	logger.Info().Str("archive", name).Int64("size", archive.Size).Msg("Backup created")

	if err := a.prune(protect); err != nil {
		return archive, err
	}
	return archive, nil
}

// Prune deletes all but the newest archives.
func (a *Archiver) Prune() error {
	return a.prune("")
}

func (a *Archiver) prune(protect string) error {
	logger := logging.GetLogger("backup")
	names, err := a.names()
	if err != nil {
		return err
	}
	if len(names) <= a.keep {
		return nil
	}

	// names is oldest first
	for _, name := range names[:len(names)-a.keep] {
		if name == protect {
			continue
		}
		if err := os.Remove(filepath.Join(a.paths.BackupsDir(), name)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrBackup, "failed to remove old backup %s", name)
		}
		logger.Debug().Str("archive", name).Msg("Pruned old backup")
	}
	return nil
}

// names lists archive names oldest first.
func (a *Archiver) names() ([]string, error) {
	entries, err := os.ReadDir(a.paths.BackupsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrBackup, "failed to read backups directory")
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && isArchiveName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// List returns archives newest first.
func (a *Archiver) List() ([]Archive, error) {
	names, err := a.names()
	if err != nil {
		return nil, err
	}
	archives := make([]Archive, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		path := filepath.Join(a.paths.BackupsDir(), names[i])
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		archives = append(archives, Archive{Name: names[i], Path: path, Size: info.Size(), ModTime: info.ModTime()})
	}
	return archives, nil
}

// Resolve finds an archive by exact name, then by backup-<selector>.tar.gz.
func (a *Archiver) Resolve(selector string) (Archive, error) {
	if selector == "" || strings.ContainsAny(selector, `/\`) {
		return Archive{}, errors.Newf(errors.ErrNotFound, "backup file not found: %s", selector)
	}
	for _, name := range []string{selector, NamePrefix + selector + NameSuffix} {
		path := filepath.Join(a.paths.BackupsDir(), name)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return Archive{Name: name, Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
		}
	}
	return Archive{}, errors.Newf(errors.ErrNotFound, "backup file not found: %s", selector).
		WithDetail("selector", selector)
}

// Restore extracts an archive over the configs directory after taking a
// safety snapshot. An empty selector offers the newest archives to choose.
func (a *Archiver) Restore(selector string, choose Chooser) (Archive, error) {
	logger := logging.GetLogger("backup")

	var archive Archive
	if selector == "" {
		archives, err := a.List()
		if err != nil {
			return Archive{}, err
		}
		if len(archives) == 0 {
			return Archive{}, errors.New(errors.ErrNotFound, "no backups found")
		}
		if len(archives) > ChoiceLimit {
			archives = archives[:ChoiceLimit]
		}
		if choose == nil {
			return Archive{}, errors.New(errors.ErrInvalidInput, "no backup selected")
		}
		idx, err := choose(archives)
		if err != nil {
			return Archive{}, errors.Wrap(err, errors.ErrInvalidInput, "backup selection failed")
		}
		if idx < 0 || idx >= len(archives) {
			return Archive{}, errors.Newf(errors.ErrInvalidInput, "invalid selection %d", idx+1)
		}
		archive = archives[idx]
	} else {
		var err error
		archive, err = a.Resolve(selector)
		if err != nil {
			return Archive{}, err
		}
	}

	a.reporter.Info("Restoring from %s...", archive.Name)

	// Opened before the restore point is written: a snapshot taken in the
	// same second replaces the file by rename, and the handle keeps the
	// selected content.
	f, err := os.Open(archive.Path)
	if err != nil {
		return archive, errors.Wrapf(err, errors.ErrBackup, "failed to open %s", archive.Path)
	}
	defer func() { _ = f.Close() }()

	if _, err := a.create(archive.Name); err != nil {
		return archive, errors.Wrap(err, errors.ErrBackup, "failed to create restore point")
	}

	if err := extractArchive(f, a.paths.ConfigsDir()); err != nil {
		return archive, err
	}
	logger.Info().Str("archive", archive.Name).Msg("Restored backup")
	a.reporter.Success("Restored from backup successfully")
	return archive, nil
}

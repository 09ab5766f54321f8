package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/types"
)

// Environment variable names
const (
	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed layout names. These define the on-disk contract shared with other
// machines and shell prompts; they are not user-configurable.
const (
	SyncDirName         = ".sync"
	BackupsDirName      = "backups"
	MachineIDFileName   = "machine-id"
	LastSyncFileName    = "last-sync"
	SyncStatusFileName  = "sync-status"
	LockFileName        = "sync.lock"
	MarkedFilesListName = ".marked-files"
	ExternalDirName     = "external"
)

const (
	ec2MetadataFile    = "/etc/ec2-metadata"
	hypervisorUUIDFile = "/sys/hypervisor/uuid"
)

// Options controls how New resolves the profile. Zero values mean "detect".
type Options struct {
	// Home overrides the home directory.
	Home string
	// ConfigsDir overrides the machine-type default.
	ConfigsDir string
	// Branch is the sync branch recorded in the profile.
	Branch string
	// Root prefixes the files probed for EC2 detection.
	Root string
	// GOOS overrides runtime.GOOS for detection.
	GOOS string
}

// Paths is the resolved PathConfig of one invocation.
type Paths struct {
	home        string
	configsDir  string
	branch      string
	machineType types.MachineType
}

// New detects the machine type and resolves the configs directory.
func New(opts Options) (*Paths, error) {
	home := opts.Home
	if home == "" {
		var err error
		home, err = homeDir()
		if err != nil {
			return nil, err
		}
	}
	home, err := filepath.Abs(expandWith(home, home))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for home %s", home)
	}

	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	machineType := DetectMachineType(opts.Root, goos)

	configsDir := opts.ConfigsDir
	if configsDir == "" {
		configsDir = DefaultConfigsDir(home, machineType)
	}
	if err := ValidatePath(configsDir); err != nil {
		return nil, err
	}
	configsDir, err = filepath.Abs(expandWith(configsDir, home))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for configs dir")
	}

	return &Paths{
		home:        home,
		configsDir:  configsDir,
		branch:      opts.Branch,
		machineType: machineType,
	}, nil
}

// DetectMachineType probes for EC2 markers below root, then falls back to the
// operating system.
func DetectMachineType(root, goos string) types.MachineType {
	if _, err := os.Stat(filepath.Join(root, ec2MetadataFile)); err == nil {
		return types.MachineEC2
	}
	if data, err := os.ReadFile(filepath.Join(root, hypervisorUUIDFile)); err == nil {
		if strings.HasPrefix(string(data), "ec2") {
			return types.MachineEC2
		}
	}
	if goos == "darwin" {
		return types.MachineMac
	}
	return types.MachineLinux
}

// DefaultConfigsDir returns where configs live for a machine type.
func DefaultConfigsDir(home string, machineType types.MachineType) string {
	if machineType == types.MachineMac {
		return filepath.Join(home, "dev", "configs")
	}
	return filepath.Join(home, "configs")
}

func homeDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileAccess, "cannot determine home directory")
	}
	return home, nil
}

// Home returns the home directory.
func (p *Paths) Home() string { return p.home }

// ConfigsDir returns the git working copy.
func (p *Paths) ConfigsDir() string { return p.configsDir }

// MachineType returns the detected machine type.
func (p *Paths) MachineType() types.MachineType { return p.machineType }

// Branch returns the sync branch.
func (p *Paths) Branch() string { return p.branch }

func (p *Paths) SyncDir() string        { return filepath.Join(p.configsDir, SyncDirName) }
func (p *Paths) BackupsDir() string     { return filepath.Join(p.SyncDir(), BackupsDirName) }
func (p *Paths) MachineIDFile() string  { return filepath.Join(p.SyncDir(), MachineIDFileName) }
func (p *Paths) LastSyncFile() string   { return filepath.Join(p.SyncDir(), LastSyncFileName) }
func (p *Paths) SyncStatusFile() string { return filepath.Join(p.SyncDir(), SyncStatusFileName) }
func (p *Paths) LockFile() string       { return filepath.Join(p.SyncDir(), LockFileName) }
func (p *Paths) MarkedFilesList() string {
	return filepath.Join(p.configsDir, MarkedFilesListName)
}
func (p *Paths) ExternalDir() string { return filepath.Join(p.configsDir, ExternalDirName) }

// ExternalPath maps a home-relative entry to its relocated copy.
func (p *Paths) ExternalPath(rel string) string {
	return filepath.Join(p.ExternalDir(), rel)
}

// HomePath maps a home-relative entry to its location in the home directory.
func (p *Paths) HomePath(rel string) string {
	return filepath.Join(p.home, rel)
}

// ConfigsPath joins rel onto the configs directory.
func (p *Paths) ConfigsPath(rel string) string {
	return filepath.Join(p.configsDir, rel)
}

// ConfigsDirExists reports whether the working copy directory is present.
func (p *Paths) ConfigsDirExists() bool {
	info, err := os.Stat(p.configsDir)
	return err == nil && info.IsDir()
}

// Profile returns the machine profile for a known machine id.
func (p *Paths) Profile(machineID string) types.MachineProfile {
	return types.MachineProfile{
		Type:       p.machineType,
		ID:         machineID,
		ConfigsDir: p.configsDir,
		Branch:     p.branch,
	}
}

// ExpandHome expands a leading ~ to the home directory.
func (p *Paths) ExpandHome(path string) string {
	return expandWith(path, p.home)
}

// ResolveUnderHome turns a user supplied path (relative to the working
// directory, absolute, or ~-prefixed) into its absolute form and its
// home-relative form. Paths outside home are rejected.
func (p *Paths) ResolveUnderHome(path string) (abs string, rel string, err error) {
	if err := ValidatePath(path); err != nil {
		return "", "", err
	}
	abs, err = filepath.Abs(p.ExpandHome(path))
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve %s", path)
	}
	rel, err = filepath.Rel(p.home, abs)
	if err != nil || rel == "." || !ContainsPath(p.home, abs) {
		return "", "", errors.Newf(errors.ErrInvalidInput, "%s is not inside the home directory %s", abs, p.home).
			WithDetail("path", abs)
	}
	return abs, rel, nil
}

// expandWith expands ~ and ~/ against home; ~user forms are left untouched.
func expandWith(path, home string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	return path
}

package setup

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/jtele2/csync/pkg/datastore"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/symlinks"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/vcs"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

const (
	ZshrcLocalName = "zshrc.local"
	GitignoreName  = ".gitignore"
	// GitignoreBlock is appended to a .gitignore lacking .sync/, or becomes
	// the whole file when there is none.
	GitignoreBlock = "\n# Sync system files\n.sync/\n*.local\n"
)

// Links creates the standard symlinks.
type Links interface {
	ReconcileStandard(force bool) (symlinks.Report, error)
}

// Deps are the collaborators of a Setup.
type Deps struct {
	FS        types.FS
	Paths     *paths.Paths
	VCS       vcs.VersionControl
	Store     datastore.DataStore
	Links     Links
	Reporter  output.Reporter
	RemoteURL string
	// Out receives the rendered next steps. Nil discards them.
	Out   io.Writer
	Color bool
	Width int
}

// Result records what a setup run changed.
type Result struct {
	MachineID         string
	ClonedRepository  bool
	CreatedZshrcLocal bool
	// UpdatedGitignore is set when .gitignore was created or extended.
	UpdatedGitignore bool
	Links            symlinks.Report
}

// Setup prepares a machine for syncing.
type Setup struct {
	deps Deps
}

// New creates a Setup.
func New(deps Deps) *Setup {
	if deps.Reporter == nil {
		deps.Reporter = output.Discard{}
	}
	if deps.Width <= 0 {
		deps.Width = 80
	}
	return &Setup{deps: deps}
}

type templateData struct {
	MachineID   string
	MachineType types.MachineType
	ConfigsDir  string
}

// Run performs every bootstrap step. It is safe to run again on a machine
// that is already set up.
func (s *Setup) Run(ctx context.Context) (*Result, error) {
	d := s.deps
	logger := logging.GetLogger("setup")
	done := logging.LogOperationStart(logger, "setup")
	defer done()

	d.Reporter.Info("Setting up sync environment...")
	res := &Result{}

	// The clone comes first so checking out the remote branch never collides
	// with the files written below.
	if !d.VCS.IsRepository() {
		if d.RemoteURL == "" {
			return res, errors.New(errors.ErrConfigLoad, "no remote repository configured").
				WithHint("set sync.remote_url in the config file or CSYNC_SYNC__REMOTE_URL")
		}
		d.Reporter.Info("Cloning %s into %s", d.RemoteURL, d.Paths.ConfigsDir())
		if err := d.VCS.Init(ctx, d.RemoteURL); err != nil {
			return res, err
		}
		res.ClonedRepository = true
	}

	for _, dir := range []string{d.Paths.SyncDir(), d.Paths.BackupsDir(), d.Paths.ExternalDir()} {
		if err := d.FS.MkdirAll(dir, 0755); err != nil {
			return res, errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", dir)
		}
	}

	machineID, err := d.Store.MachineID()
	if err != nil {
		return res, err
	}
	res.MachineID = machineID
	d.Reporter.Success("Machine ID: %s", machineID)

	if err := s.ensureFile(d.Paths.MarkedFilesList(), nil); err != nil {
		return res, err
	}

	d.Reporter.Info("Creating config symlinks...")
	if res.Links, err = d.Links.ReconcileStandard(true); err != nil {
		return res, err
	}

	data := templateData{MachineID: machineID, MachineType: d.Paths.MachineType(), ConfigsDir: d.Paths.ConfigsDir()}
	if res.CreatedZshrcLocal, err = s.writeZshrcLocal(data); err != nil {
		return res, err
	}
	if res.UpdatedGitignore, err = s.updateGitignore(); err != nil {
		return res, err
	}

	if err := d.Store.SetSyncState(types.SyncStateNone); err != nil {
		return res, err
	}

	d.Reporter.Success("Setup complete!")
	s.printNextSteps(data)
	logger.Info().Str("machine_id", machineID).Bool("cloned", res.ClonedRepository).Msg("Setup finished")
	return res, nil
}

// ensureFile creates path with content unless it exists.
func (s *Setup) ensureFile(path string, content []byte) error {
	if _, err := s.deps.FS.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to check %s", path)
	}
	if err := s.deps.FS.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", path)
	}
	return nil
}

func (s *Setup) writeZshrcLocal(data templateData) (bool, error) {
	path := s.deps.Paths.ConfigsPath(ZshrcLocalName)
	if _, err := s.deps.FS.Stat(path); err == nil {
		return false, nil
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "zshrc.local.tmpl", data); err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to render zshrc.local")
	}
	if err := s.ensureFile(path, buf.Bytes()); err != nil {
		return false, err
	}
	s.deps.Reporter.Success("Created %s for machine-specific settings", ZshrcLocalName)
	return true, nil
}

func (s *Setup) updateGitignore() (bool, error) {
	path := s.deps.Paths.ConfigsPath(GitignoreName)
	content, err := s.deps.FS.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
		}
		block := []byte(strings.TrimPrefix(GitignoreBlock, "\n"))
		if err := s.deps.FS.WriteFile(path, block, 0644); err != nil {
			return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", path)
		}
		s.deps.Reporter.Success("Created .gitignore")
		return true, nil
	}
	if strings.Contains(string(content), paths.SyncDirName+"/") {
		return false, nil
	}
	content = append(content, []byte(GitignoreBlock)...)
	if err := s.deps.FS.WriteFile(path, content, 0644); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to update %s", path)
	}
	s.deps.Reporter.Success("Updated .gitignore")
	return true, nil
}

func (s *Setup) printNextSteps(data templateData) {
	if s.deps.Out == nil {
		return
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "next-steps.md.tmpl", data); err != nil {
		logger := logging.GetLogger("setup")
		logger.Warn().Err(err).Msg("Failed to render next steps")
		return
	}
	rendered, err := output.RenderMarkdown(buf.String(), s.deps.Width, s.deps.Color)
	if err != nil {
		rendered = buf.String()
	}
	_, _ = fmt.Fprint(s.deps.Out, rendered)
}

package csync

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jtele2/csync/pkg/backup"
	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/datastore"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/filesystem"
	"github.com/jtele2/csync/pkg/marked"
	"github.com/jtele2/csync/pkg/metrics"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/symlinks"
	"github.com/jtele2/csync/pkg/sync"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/ui"
	"github.com/jtele2/csync/pkg/vcs"
)

// rootOptions are the global flags.
type rootOptions struct {
	verbosity  int
	configFile string
}

// app is everything a command needs, built from configuration.
type app struct {
	cfg      *config.Config
	paths    *paths.Paths
	fs       types.FS
	store    datastore.DataStore
	git      *vcs.Git
	reporter output.Reporter
	prompter ui.Prompter
	out      io.Writer
	errOut   io.Writer
	color    bool
}

// newApp loads configuration and resolves paths. Unless the command can
// create it, a missing configs directory is an error.
func newApp(cmd *cobra.Command, opts *rootOptions, needConfigsDir bool) (*app, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.configFile})
	if err != nil {
		return nil, err
	}
	p, err := paths.New(paths.Options{
		ConfigsDir: cfg.Paths.ConfigsDir,
		Branch:     cfg.Sync.Branch,
	})
	if err != nil {
		return nil, err
	}
	if needConfigsDir && !p.ConfigsDirExists() {
		return nil, errors.Newf(errors.ErrNotFound, MsgConfigsDirMissing, p.ConfigsDir()).
			WithHint(MsgHintRunSetup)
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	color := false
	if f, ok := out.(*os.File); ok {
		color = ui.DetectFormat(f) == ui.FormatTerminal
	}

	fs := filesystem.NewOS()
	return &app{
		cfg:      cfg,
		paths:    p,
		fs:       fs,
		store:    datastore.New(fs, p, datastore.CurrentIdentity()),
		git:      vcs.NewGit(p.ConfigsDir(), cfg.Sync.Remote, cfg.Sync.Branch),
		reporter: output.NewConsole(out, errOut, color),
		prompter: ui.NewPrompter(),
		out:      out,
		errOut:   errOut,
		color:    color,
	}, nil
}

func (a *app) marked(reporter output.Reporter) *marked.Manager {
	return marked.New(a.fs, a.paths, a.git, reporter)
}

func (a *app) backups(reporter output.Reporter) *backup.Archiver {
	return backup.New(a.paths, a.cfg.Backup, reporter)
}

func (a *app) links(reporter output.Reporter) *symlinks.Reconciler {
	return symlinks.New(a.fs, a.paths, a.cfg.Links, reporter)
}

// orchestrator wires a sync run. Background runs narrate nothing but
// warnings and errors, in every component.
func (a *app) orchestrator(background bool) *sync.Orchestrator {
	reporter := a.reporter
	if background {
		reporter = output.NewQuiet(a.reporter)
	}
	return sync.New(sync.Deps{
		Paths:    a.paths,
		VCS:      a.git,
		Store:    a.store,
		Backups:  a.backups(reporter),
		Marked:   a.marked(reporter),
		Links:    a.links(reporter),
		Reporter: reporter,
		Metrics:  metrics.NewTextfileExporter(a.paths.ExpandHome(a.cfg.Metrics.Textfile)),
	})
}

package status

import (
	"context"
	"path/filepath"

	"github.com/jtele2/csync/pkg/backup"
	"github.com/jtele2/csync/pkg/datastore"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/symlinks"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/vcs"
)

// Never is shown when no sync has been recorded.
const Never = "never"

// Link is a standard link as reported.
type Link struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Linked bool   `json:"linked" yaml:"linked"`
}

// Report is the collected status.
type Report struct {
	Machine      types.MachineProfile `json:"machine" yaml:"machine"`
	Remote       types.RemoteStatus   `json:"remote_status" yaml:"remote_status"`
	SyncState    types.SyncState      `json:"sync_state" yaml:"sync_state"`
	LastSync     string               `json:"last_sync" yaml:"last_sync"`
	MarkedFiles  []string             `json:"marked_files" yaml:"marked_files"`
	Links        []Link               `json:"links" yaml:"links"`
	Backups      int                  `json:"backups" yaml:"backups"`
	LatestBackup string               `json:"latest_backup,omitempty" yaml:"latest_backup,omitempty"`
	// Branch and Uncommitted are only set when the working copy is a
	// repository.
	Branch      string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Uncommitted int    `json:"uncommitted_changes" yaml:"uncommitted_changes"`
}

// MarkedFiles lists marked entries.
type MarkedFiles interface {
	Load() ([]string, error)
}

// Backups lists archives newest first.
type Backups interface {
	List() ([]backup.Archive, error)
}

// Links lists the standard link pairs.
type Links interface {
	Pairs() []symlinks.PairStatus
}

// Deps are the sources a Collector reads.
type Deps struct {
	Paths   *paths.Paths
	VCS     vcs.VersionControl
	Store   datastore.DataStore
	Marked  MarkedFiles
	Backups Backups
	Links   Links
}

// Collector builds status reports.
type Collector struct {
	deps Deps
}

// New creates a Collector.
func New(deps Deps) *Collector {
	return &Collector{deps: deps}
}

// Collect fetches and classifies the branch, then reads everything else
// from disk. Only metadata failures are returned; git problems become the
// error classification.
func (c *Collector) Collect(ctx context.Context) (*Report, error) {
	d := c.deps
	logger := logging.GetLogger("status")

	machineID, err := d.Store.MachineID()
	if err != nil {
		return nil, err
	}
	r := &Report{
		Machine:  d.Paths.Profile(machineID),
		Remote:   c.classify(ctx),
		LastSync: Never,
	}

	if r.SyncState, err = d.Store.SyncState(); err != nil {
		return nil, err
	}
	last, ok, err := d.Store.LastSync()
	if err != nil {
		return nil, err
	}
	if ok {
		r.LastSync = last
	}

	if r.MarkedFiles, err = d.Marked.Load(); err != nil {
		return nil, err
	}
	if r.MarkedFiles == nil {
		r.MarkedFiles = []string{}
	}

	r.Links = []Link{}
	for _, pair := range d.Links.Pairs() {
		r.Links = append(r.Links, Link{Source: pair.Source, Target: pair.Target, Linked: pair.Linked})
	}

	archives, err := d.Backups.List()
	if err != nil {
		return nil, err
	}
	r.Backups = len(archives)
	if len(archives) > 0 {
		r.LatestBackup = archives[0].Name
	}

	if d.VCS.IsRepository() {
		if branch, err := d.VCS.CurrentBranch(); err == nil {
			r.Branch = branch
		} else {
			logger.Debug().Err(err).Msg("Could not read current branch")
			r.Branch = d.Paths.Branch()
		}
		if changes, err := d.VCS.Status(ctx); err == nil {
			r.Uncommitted = len(changes)
		} else {
			logger.Debug().Err(err).Msg("Could not read working copy status")
		}
	}
	return r, nil
}

func (c *Collector) classify(ctx context.Context) types.RemoteStatus {
	v := c.deps.VCS
	logger := logging.GetLogger("status")
	if !v.IsRepository() {
		return types.RemoteNoRepo
	}
	if err := v.Fetch(ctx); err != nil {
		logger.Debug().Err(err).Msg("Fetch failed")
		return types.RemoteError
	}
	local, err := v.LocalTip()
	if err != nil {
		return types.RemoteError
	}
	remote, err := v.RemoteTip()
	if err != nil {
		return types.RemoteError
	}
	if local == remote {
		return types.RemoteSynced
	}
	base, err := v.MergeBase(local, remote)
	if err != nil {
		logger.Debug().Err(err).Msg("No merge base")
		return types.RemoteError
	}
	return types.ClassifyTips(local, remote, base)
}

// LinkName shortens a link target for display.
func LinkName(l Link) string {
	return "~/" + filepath.Base(l.Target)
}

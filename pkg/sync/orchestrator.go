package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jtele2/csync/pkg/backup"
	"github.com/jtele2/csync/pkg/datastore"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/metrics"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/symlinks"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/vcs"
)

// TimestampLayout formats times in stash and commit messages.
const TimestampLayout = "2006-01-02 15:04:05"

// Phase is a step of the sync state machine.
type Phase string

const (
	PhaseIdle                   Phase = "IDLE"
	PhaseCheckingNetwork        Phase = "CHECKING_NETWORK"
	PhaseBackingUp              Phase = "BACKING_UP"
	PhaseResolvingLocalChanges  Phase = "RESOLVING_LOCAL_CHANGES"
	PhaseReconcilingRemote      Phase = "RECONCILING_REMOTE"
	PhaseReconcilingMarkedFiles Phase = "RECONCILING_MARKED_FILES"
	PhaseCommitting             Phase = "COMMITTING"
	PhasePushing                Phase = "PUSHING"
	PhaseDone                   Phase = "DONE"
	PhaseError                  Phase = "ERROR"
)

// Options selects the sync mode. ForcePush and ForcePull are exclusive.
type Options struct {
	ForcePush  bool
	ForcePull  bool
	DryRun     bool
	Background bool
}

// Result describes what a sync run did, or in a dry run would have done.
type Result struct {
	RunID  string
	Phase  Phase
	DryRun bool

	Backup string
	// Changes are the local changes found before stashing.
	Changes []vcs.Change
	// Stashed is set when this run created a stash.
	Stashed bool
	// StashRetained is set when a force mode left this run's stash in place.
	StashRetained bool
	Integrated    bool
	MarkedLinked  int
	Committed     bool
	Pushed        bool
	ForcePushed   bool
	ForcePulled   bool
}

// Backups creates and lists archives.
type Backups interface {
	Create() (backup.Archive, error)
	List() ([]backup.Archive, error)
}

// MarkedFiles reconciles marked links.
type MarkedFiles interface {
	Load() ([]string, error)
	Reconcile(dryRun bool) (int, error)
}

// Links maintains the standard symlinks.
type Links interface {
	ReconcileStandard(force bool) (symlinks.Report, error)
}

// Deps are the collaborators of an Orchestrator.
type Deps struct {
	Paths    *paths.Paths
	VCS      vcs.VersionControl
	Store    datastore.DataStore
	Backups  Backups
	Marked   MarkedFiles
	Links    Links
	Reporter output.Reporter
	// Metrics may be nil.
	Metrics *metrics.TextfileExporter
}

// Orchestrator runs sync.
type Orchestrator struct {
	deps     Deps
	now      func() time.Time
	newRunID func() string
}

// New creates an Orchestrator.
func New(deps Deps) *Orchestrator {
	if deps.Reporter == nil {
		deps.Reporter = output.Discard{}
	}
	return &Orchestrator{
		deps:     deps,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// WithClock replaces the time source used for messages and last-sync.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// run carries the state of one Sync call.
type run struct {
	ctx       context.Context
	opts      Options
	result    *Result
	reporter  output.Reporter
	logger    zerolog.Logger
	machineID string
}

func (r *run) enter(phase Phase) {
	r.result.Phase = phase
	r.logger.Debug().Str("phase", string(phase)).Msg("Entering phase")
}

// Sync brings the working copy and the remote branch into agreement.
func (o *Orchestrator) Sync(ctx context.Context, opts Options) (*Result, error) {
	runID := o.newRunID()
	r := &run{
		ctx:      ctx,
		opts:     opts,
		result:   &Result{RunID: runID, Phase: PhaseIdle, DryRun: opts.DryRun},
		reporter: o.deps.Reporter,
		logger:   logging.WithRun("sync", runID),
	}
	if opts.Background {
		r.reporter = output.NewQuiet(o.deps.Reporter)
	}

	if opts.ForcePush && opts.ForcePull {
		return r.result, errors.New(errors.ErrInvalidInput, "--force-push and --force-pull are mutually exclusive")
	}
	if !o.deps.VCS.IsRepository() {
		return r.result, errors.Newf(errors.ErrNoRepo, "%s is not a git repository", o.deps.Paths.ConfigsDir()).
			WithHint("run 'csync setup' first")
	}

	lock, err := AcquireLock(o.deps.Paths.LockFile())
	if err != nil {
		return r.result, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to release sync lock")
		}
	}()

	r.logger.Info().
		Bool("forcePush", opts.ForcePush).
		Bool("forcePull", opts.ForcePull).
		Bool("dryRun", opts.DryRun).
		Bool("background", opts.Background).
		Msg("Sync started")
	start := o.now()

	prior, err := o.deps.Store.SyncState()
	if err != nil {
		r.logger.Debug().Err(err).Msg("Could not read prior sync state")
	}

	err = o.sync(r)

	if err != nil {
		r.result.Phase = PhaseError
		if stateErr := o.deps.Store.SetSyncState(types.SyncStateError); stateErr != nil {
			r.logger.Warn().Err(stateErr).Msg("Failed to record error state")
		}
		r.logger.Error().Err(err).Str("code", string(errors.GetErrorCode(err))).Msg("Sync failed")
	} else {
		r.result.Phase = PhaseDone
		r.logger.Info().Dur("duration", o.now().Sub(start)).Msg("Sync finished")
	}

	// A successful dry run leaves the prompt token as it was; a failed one
	// keeps the error token like any other run.
	switch {
	case opts.DryRun && err == nil:
		if stateErr := o.deps.Store.SetSyncState(prior); stateErr != nil {
			r.logger.Warn().Err(stateErr).Msg("Failed to restore sync state after dry run")
		}
	case !opts.DryRun:
		o.export(r, start, err == nil)
	}
	return r.result, err
}

func (o *Orchestrator) sync(r *run) error {
	d := o.deps

	machineID, err := d.Store.MachineID()
	if err != nil {
		return err
	}
	r.machineID = machineID

	r.enter(PhaseCheckingNetwork)
	r.reporter.Info("Checking network connectivity...")
	if err := d.VCS.Fetch(r.ctx); err != nil {
		r.reporter.Error("Cannot reach remote repository")
		return err
	}

	if err := d.Store.SetSyncState(types.SyncStateInProgress); err != nil {
		return err
	}
	r.reporter.Info("Starting sync from: %s", machineID)

	r.enter(PhaseBackingUp)
	if r.opts.DryRun {
		r.reporter.DryRun("Would create backup")
	} else {
		archive, err := d.Backups.Create()
		if err != nil {
			return err
		}
		r.result.Backup = archive.Name
	}

	r.enter(PhaseResolvingLocalChanges)
	if err := o.stashLocalChanges(r); err != nil {
		return err
	}

	switch {
	case r.opts.ForcePush:
		return o.forcePush(r)
	case r.opts.ForcePull:
		return o.forcePull(r)
	}

	r.enter(PhaseReconcilingRemote)
	if err := o.integrateRemote(r); err != nil {
		return err
	}
	if r.result.Stashed {
		r.reporter.Info("Applying stashed changes...")
		if err := d.VCS.StashPop(r.ctx); err != nil {
			r.reporter.Warn("Conflicts while applying stash")
			return err
		}
	}

	r.enter(PhaseReconcilingMarkedFiles)
	linked, err := d.Marked.Reconcile(r.opts.DryRun)
	if err != nil {
		return err
	}
	r.result.MarkedLinked = linked

	r.enter(PhaseCommitting)
	if err := o.commitLocalChanges(r); err != nil {
		return err
	}

	r.enter(PhasePushing)
	if err := o.pushIfAhead(r); err != nil {
		return err
	}

	return o.finish(r, true)
}

// stashLocalChanges stashes tracked modifications and untracked files.
func (o *Orchestrator) stashLocalChanges(r *run) error {
	changes, err := o.deps.VCS.Status(r.ctx)
	if err != nil {
		return err
	}
	r.result.Changes = changes
	if len(changes) == 0 {
		return nil
	}

	r.reporter.Warn("Uncommitted local changes detected")
	if r.opts.DryRun {
		r.reporter.DryRun("Would stash local changes")
		for _, c := range changes {
			r.reporter.DryRun("  %s", c.Describe())
		}
		return nil
	}

	msg := fmt.Sprintf("Auto-stash by sync from %s at %s", r.machineID, o.now().Format(TimestampLayout))
	created, err := o.deps.VCS.StashPush(r.ctx, msg)
	if err != nil {
		return err
	}
	r.result.Stashed = created
	if created {
		r.reporter.Success("Local changes stashed")
	}
	return nil
}

func (o *Orchestrator) reportRetainedStash(r *run) {
	if !r.result.Stashed {
		return
	}
	r.result.StashRetained = true
	r.reporter.Warn("Local changes were stashed and kept in the stash; run 'git stash pop' in %s to restore them",
		o.deps.Paths.ConfigsDir())
}

func (o *Orchestrator) forcePush(r *run) error {
	r.enter(PhasePushing)
	r.reporter.Warn("Force pushing local changes...")
	if r.opts.DryRun {
		r.reporter.DryRun("Would force push %s to remote", o.deps.Paths.Branch())
		return o.finish(r, false)
	}
	if err := o.deps.VCS.Push(r.ctx, true); err != nil {
		return err
	}
	r.result.ForcePushed = true
	r.result.Pushed = true
	r.reporter.Success("Force pushed to remote")
	o.reportRetainedStash(r)
	return o.finish(r, false)
}

func (o *Orchestrator) forcePull(r *run) error {
	r.enter(PhaseReconcilingRemote)
	r.reporter.Warn("Force pulling remote changes...")
	if r.opts.DryRun {
		r.reporter.DryRun("Would reset %s to the remote state", o.deps.Paths.Branch())
		return o.finish(r, false)
	}
	if err := o.deps.VCS.ResetHard(r.ctx); err != nil {
		return err
	}
	r.result.ForcePulled = true
	r.reporter.Success("Reset to remote state")

	r.enter(PhaseReconcilingMarkedFiles)
	linked, err := o.deps.Marked.Reconcile(false)
	if err != nil {
		return err
	}
	r.result.MarkedLinked = linked
	o.reportRetainedStash(r)
	return o.finish(r, false)
}

// integrateRemote pulls when the tips differ. On a conflict the stash
// created by this run is restored before the error is returned.
func (o *Orchestrator) integrateRemote(r *run) error {
	d := o.deps
	if err := d.VCS.Fetch(r.ctx); err != nil {
		return err
	}
	local, err := d.VCS.LocalTip()
	if err != nil {
		return err
	}
	remote, err := d.VCS.RemoteTip()
	if err != nil {
		return err
	}
	if local == remote {
		r.reporter.Success("Already up to date with remote")
		return nil
	}

	r.reporter.Info("Pulling remote changes...")
	if r.opts.DryRun {
		r.reporter.DryRun("Would pull and rebase")
		return nil
	}
	if err := vcs.Integrate(r.ctx, d.VCS); err != nil {
		r.reporter.Error("Merge failed. Manual intervention required.")
		if r.result.Stashed {
			if popErr := d.VCS.StashPop(r.ctx); popErr != nil {
				r.logger.Warn().Err(popErr).Msg("Failed to restore stash after merge conflict")
				r.reporter.Warn("Local changes remain in the stash")
			} else {
				r.result.Stashed = false
			}
		}
		return err
	}
	r.result.Integrated = true
	r.reporter.Success("Pulled remote changes")
	return nil
}

func (o *Orchestrator) commitLocalChanges(r *run) error {
	d := o.deps
	dirty, err := d.VCS.IsDirty(r.ctx)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}

	r.reporter.Info("Committing local changes...")
	msg := fmt.Sprintf("Sync from %s at %s", r.machineID, o.now().Format(TimestampLayout))
	if r.opts.DryRun {
		r.reporter.DryRun("Would commit changes: %s", msg)
		return nil
	}
	if err := d.VCS.AddAll(r.ctx); err != nil {
		return err
	}
	if err := d.VCS.Commit(r.ctx, msg); err != nil {
		return err
	}
	r.result.Committed = true
	r.reporter.Success("Changes committed")
	return nil
}

func (o *Orchestrator) pushIfAhead(r *run) error {
	d := o.deps
	local, err := d.VCS.LocalTip()
	if err != nil {
		return err
	}
	remote, err := d.VCS.RemoteTip()
	if err != nil {
		return err
	}
	if local == remote {
		return nil
	}

	r.reporter.Info("Pushing to remote...")
	if r.opts.DryRun {
		r.reporter.DryRun("Would push %s to remote", d.Paths.Branch())
		return nil
	}
	if err := d.VCS.Push(r.ctx, false); err != nil {
		return err
	}
	r.result.Pushed = true
	r.reporter.Success("Pushed to remote")
	return nil
}

// finish records success. Force modes only set the state; a full sync also
// records the last-sync time and, when interactive, refreshes the standard
// links.
func (o *Orchestrator) finish(r *run, full bool) error {
	d := o.deps
	if r.opts.DryRun {
		r.reporter.Success("Dry run completed")
		return nil
	}
	if err := d.Store.SetSyncState(types.SyncStateSynced); err != nil {
		return err
	}
	if !full {
		r.reporter.Success("Sync completed successfully!")
		return nil
	}
	if err := d.Store.RecordLastSync(o.now()); err != nil {
		return err
	}
	if !r.opts.Background {
		if _, err := d.Links.ReconcileStandard(false); err != nil {
			return err
		}
	}
	r.reporter.Success("Sync completed successfully!")
	return nil
}

// export writes the run outcome to the metrics textfile when configured.
func (o *Orchestrator) export(r *run, start time.Time, success bool) {
	if o.deps.Metrics == nil {
		return
	}
	finished := o.now()
	outcome := metrics.SyncOutcome{
		Finished: finished,
		Duration: finished.Sub(start),
		Success:  success,
	}
	if entries, err := o.deps.Marked.Load(); err == nil {
		outcome.MarkedFiles = len(entries)
	}
	if archives, err := o.deps.Backups.List(); err == nil {
		outcome.Backups = len(archives)
	}
	if err := o.deps.Metrics.Export(outcome); err != nil {
		r.logger.Warn().Err(err).Str("path", o.deps.Metrics.Path()).Msg("Failed to export metrics")
	}
}

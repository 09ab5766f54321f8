// pkg/sync/orchestrator_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: MockVCS, temp configs dir
// PURPOSE: Test the sync state machine step by step

package sync_test

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jtele2/csync/pkg/backup"
	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/marked"
	"github.com/jtele2/csync/pkg/metrics"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/symlinks"
	"github.com/jtele2/csync/pkg/sync"
	"github.com/jtele2/csync/pkg/testutil"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/vcs"
)

var fixedNow = time.Date(2024, 5, 4, 10, 30, 0, 0, time.Local)

type fakeLinks struct {
	calls []bool
}

func (f *fakeLinks) ReconcileStandard(force bool) (symlinks.Report, error) {
	f.calls = append(f.calls, force)
	return symlinks.Report{}, nil
}

type harness struct {
	env   *testutil.TestEnvironment
	vcs   *testutil.MockVCS
	rec   *output.Recorder
	links *fakeLinks
	orch  *sync.Orchestrator
	deps  sync.Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	env := testutil.NewTestEnvironment(t)
	v := &testutil.MockVCS{}
	rec := &output.Recorder{}
	links := &fakeLinks{}
	clock := func() time.Time { return fixedNow }
	deps := sync.Deps{
		Paths:    env.Paths,
		VCS:      v,
		Store:    env.DataStore,
		Backups:  backup.New(env.Paths, config.Default().Backup, output.Discard{}).WithClock(clock),
		Marked:   marked.New(env.FS, env.Paths, v, output.Discard{}),
		Links:    links,
		Reporter: rec,
	}
	v.On("IsRepository").Return(true).Maybe()
	return &harness{
		env:   env,
		vcs:   v,
		rec:   rec,
		links: links,
		deps:  deps,
		orch:  sync.New(deps).WithClock(clock),
	}
}

func (h *harness) rebuild() {
	h.orch = sync.New(h.deps).WithClock(func() time.Time { return fixedNow })
}

func (h *harness) state(t *testing.T) types.SyncState {
	t.Helper()
	s, err := h.env.DataStore.SyncState()
	require.NoError(t, err)
	return s
}

func (h *harness) backups(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(h.env.Paths.BackupsDir())
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return len(entries)
}

var change = vcs.Change{Path: "zshrc", Index: ' ', Worktree: 'M'}

const machineID = "tester@machine-linux"

func TestSync_UpToDate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil).Twice()
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change(nil), nil)
	h.vcs.On("LocalTip").Return("aaa", nil)
	h.vcs.On("RemoteTip").Return("aaa", nil)
	h.vcs.On("IsDirty", mock.Anything).Return(false, nil)

	res, err := h.orch.Sync(ctx, sync.Options{})
	require.NoError(t, err)

	assert.Equal(t, sync.PhaseDone, res.Phase)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, backup.Name(fixedNow), res.Backup)
	assert.False(t, res.Stashed)
	assert.False(t, res.Committed)
	assert.False(t, res.Pushed)
	assert.Equal(t, types.SyncStateSynced, h.state(t))
	assert.Equal(t, 1, h.backups(t))

	last, ok, err := h.env.DataStore.LastSync()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-05-04 10:30:00", last)
	assert.Equal(t, []bool{false}, h.links.calls)
	assert.True(t, h.rec.Contains(output.LevelInfo, "Starting sync from: "+machineID))
	assert.True(t, h.rec.Contains(output.LevelSuccess, "Already up to date"))
	h.vcs.AssertExpectations(t)
}

func TestSync_StashIntegrateCommitPush(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil).Twice()
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change{change}, nil)
	h.vcs.On("StashPush", mock.Anything, "Auto-stash by sync from "+machineID+" at 2024-05-04 10:30:00").Return(true, nil)
	// before integration, then before the push
	h.vcs.On("LocalTip").Return("local", nil).Once()
	h.vcs.On("RemoteTip").Return("remote", nil).Once()
	h.vcs.On("PullRebase", mock.Anything).Return(nil)
	h.vcs.On("StashPop", mock.Anything).Return(nil)
	h.vcs.On("IsDirty", mock.Anything).Return(true, nil)
	h.vcs.On("AddAll", mock.Anything).Return(nil)
	h.vcs.On("Commit", mock.Anything, "Sync from "+machineID+" at 2024-05-04 10:30:00").Return(nil)
	h.vcs.On("LocalTip").Return("committed", nil).Once()
	h.vcs.On("RemoteTip").Return("remote", nil).Once()
	h.vcs.On("Push", mock.Anything, false).Return(nil)

	res, err := h.orch.Sync(ctx, sync.Options{})
	require.NoError(t, err)

	assert.True(t, res.Stashed)
	assert.True(t, res.Integrated)
	assert.True(t, res.Committed)
	assert.True(t, res.Pushed)
	assert.Equal(t, []vcs.Change{change}, res.Changes)
	assert.Equal(t, types.SyncStateSynced, h.state(t))
	h.vcs.AssertExpectations(t)
}

func TestSync_NetworkUnavailable(t *testing.T) {
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).
		Return(errors.New(errors.ErrNetworkUnavailable, "cannot reach remote")).Once()

	res, err := h.orch.Sync(context.Background(), sync.Options{})
	require.Error(t, err)

	assert.True(t, errors.IsErrorCode(err, errors.ErrNetworkUnavailable))
	assert.Equal(t, sync.PhaseError, res.Phase)
	assert.Equal(t, types.SyncStateError, h.state(t))
	assert.Zero(t, h.backups(t))
	assert.True(t, h.rec.Contains(output.LevelError, "Cannot reach remote"))
	h.vcs.AssertExpectations(t)
}

func TestSync_MergeConflictRestoresStash(t *testing.T) {
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change{change}, nil)
	h.vcs.On("StashPush", mock.Anything, mock.Anything).Return(true, nil)
	h.vcs.On("LocalTip").Return("local", nil)
	h.vcs.On("RemoteTip").Return("remote", nil)
	h.vcs.On("PullRebase", mock.Anything).Return(stderrors.New("conflict"))
	h.vcs.On("AbortRebase", mock.Anything).Return(nil)
	h.vcs.On("PullMerge", mock.Anything).Return(stderrors.New("conflict"))
	h.vcs.On("AbortMerge", mock.Anything).Return(nil)
	h.vcs.On("StashPop", mock.Anything).Return(nil).Once()

	res, err := h.orch.Sync(context.Background(), sync.Options{})
	require.Error(t, err)

	assert.True(t, errors.IsErrorCode(err, errors.ErrMergeConflict))
	assert.Equal(t, vcs.ConflictHint, errors.GetHint(err))
	assert.False(t, res.Stashed)
	assert.Equal(t, types.SyncStateError, h.state(t))
	assert.Empty(t, h.links.calls)
	h.vcs.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	h.vcs.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
	h.vcs.AssertExpectations(t)
}

func TestSync_StashConflict(t *testing.T) {
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change{change}, nil)
	h.vcs.On("StashPush", mock.Anything, mock.Anything).Return(true, nil)
	h.vcs.On("LocalTip").Return("local", nil)
	h.vcs.On("RemoteTip").Return("remote", nil)
	h.vcs.On("PullRebase", mock.Anything).Return(nil)
	h.vcs.On("StashPop", mock.Anything).Return(errors.New(errors.ErrStashConflict, "conflicts while applying stash"))

	_, err := h.orch.Sync(context.Background(), sync.Options{})
	require.Error(t, err)

	assert.True(t, errors.IsErrorCode(err, errors.ErrStashConflict))
	assert.Equal(t, types.SyncStateError, h.state(t))
	assert.True(t, h.rec.Contains(output.LevelWarn, "Conflicts while applying stash"))
}

func TestSync_StashNotCreatedIsNotPopped(t *testing.T) {
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change{change}, nil)
	h.vcs.On("StashPush", mock.Anything, mock.Anything).Return(false, nil)
	h.vcs.On("LocalTip").Return("aaa", nil)
	h.vcs.On("RemoteTip").Return("aaa", nil)
	h.vcs.On("IsDirty", mock.Anything).Return(false, nil)

	_, err := h.orch.Sync(context.Background(), sync.Options{})
	require.NoError(t, err)
	h.vcs.AssertNotCalled(t, "StashPop", mock.Anything)
}

func TestSync_ForcePushKeepsStash(t *testing.T) {
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil).Once()
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change{change}, nil)
	h.vcs.On("StashPush", mock.Anything, mock.Anything).Return(true, nil)
	h.vcs.On("Push", mock.Anything, true).Return(nil)

	res, err := h.orch.Sync(context.Background(), sync.Options{ForcePush: true})
	require.NoError(t, err)

	assert.True(t, res.ForcePushed)
	assert.True(t, res.StashRetained)
	assert.Equal(t, types.SyncStateSynced, h.state(t))
	_, ok, err := h.env.DataStore.LastSync()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, h.links.calls)
	assert.True(t, h.rec.Contains(output.LevelWarn, "git stash pop"))
	h.vcs.AssertNotCalled(t, "StashPop", mock.Anything)
	h.vcs.AssertExpectations(t)
}

func TestSync_ForcePullReconcilesMarked(t *testing.T) {
	h := newHarness(t)
	h.env.WriteConfig(".marked-files", ".npmrc\n")
	h.env.WriteConfig("external/.npmrc", "registry=x\n")
	h.vcs.On("Fetch", mock.Anything).Return(nil).Once()
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change(nil), nil)
	h.vcs.On("ResetHard", mock.Anything).Return(nil)

	res, err := h.orch.Sync(context.Background(), sync.Options{ForcePull: true})
	require.NoError(t, err)

	assert.True(t, res.ForcePulled)
	assert.False(t, res.StashRetained)
	assert.Equal(t, 1, res.MarkedLinked)
	assert.Equal(t, "registry=x\n", h.env.ReadFile(h.env.Paths.HomePath(".npmrc")))
	assert.Equal(t, types.SyncStateSynced, h.state(t))
	h.vcs.AssertExpectations(t)
}

func TestSync_ForceModesAreExclusive(t *testing.T) {
	h := newHarness(t)
	_, err := h.orch.Sync(context.Background(), sync.Options{ForcePush: true, ForcePull: true})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	h.vcs.AssertNotCalled(t, "Fetch", mock.Anything)
}

func TestSync_DryRunMutatesNothing(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.env.DataStore.SetSyncState(types.SyncStateSynced))
	h.env.WriteConfig(".marked-files", ".npmrc\n")
	h.env.WriteConfig("external/.npmrc", "registry=x\n")

	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change{change}, nil)
	h.vcs.On("LocalTip").Return("local", nil)
	h.vcs.On("RemoteTip").Return("remote", nil)
	h.vcs.On("IsDirty", mock.Anything).Return(true, nil)

	res, err := h.orch.Sync(context.Background(), sync.Options{DryRun: true})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.MarkedLinked)
	assert.Equal(t, types.SyncStateSynced, h.state(t))
	assert.Zero(t, h.backups(t))
	assert.NoFileExists(t, h.env.Paths.HomePath(".npmrc"))
	_, ok, err := h.env.DataStore.LastSync()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, h.links.calls)

	for _, want := range []string{"Would create backup", "Would stash", "M zshrc", "Would pull", "Would commit", "Would push"} {
		assert.True(t, h.rec.Contains(output.LevelDryRun, want), want)
	}
	for _, method := range []string{"StashPush", "PullRebase", "AddAll", "Commit", "Push"} {
		for _, call := range h.vcs.Calls {
			assert.NotEqual(t, method, call.Method)
		}
	}
}

func TestSync_DryRunRestoresEmptyState(t *testing.T) {
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change(nil), nil)

	_, err := h.orch.Sync(context.Background(), sync.Options{DryRun: true, ForcePush: true})
	require.NoError(t, err)
	assert.Equal(t, types.SyncStateNone, h.state(t))
	h.vcs.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestSync_DryRunFailureKeepsErrorState(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.env.DataStore.SetSyncState(types.SyncStateSynced))
	h.vcs.On("Fetch", mock.Anything).
		Return(errors.New(errors.ErrNetworkUnavailable, "cannot reach remote")).Once()

	_, err := h.orch.Sync(context.Background(), sync.Options{DryRun: true})
	require.Error(t, err)
	assert.Equal(t, types.SyncStateError, h.state(t))
	assert.Zero(t, h.backups(t))
}

func TestSync_BackgroundIsQuiet(t *testing.T) {
	h := newHarness(t)
	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change{change}, nil)
	h.vcs.On("StashPush", mock.Anything, mock.Anything).Return(true, nil)
	h.vcs.On("LocalTip").Return("aaa", nil)
	h.vcs.On("RemoteTip").Return("aaa", nil)
	h.vcs.On("StashPop", mock.Anything).Return(nil)
	h.vcs.On("IsDirty", mock.Anything).Return(false, nil)

	_, err := h.orch.Sync(context.Background(), sync.Options{Background: true})
	require.NoError(t, err)

	assert.Empty(t, h.rec.Messages(output.LevelInfo))
	assert.Empty(t, h.rec.Messages(output.LevelSuccess))
	assert.NotEmpty(t, h.rec.Messages(output.LevelWarn))
	assert.Empty(t, h.links.calls)
	assert.Equal(t, types.SyncStateSynced, h.state(t))
}

func TestSync_NotARepository(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v := &testutil.MockVCS{}
	v.On("IsRepository").Return(false)
	orch := sync.New(sync.Deps{Paths: env.Paths, VCS: v, Store: env.DataStore})

	_, err := orch.Sync(context.Background(), sync.Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoRepo))
	assert.NotEmpty(t, errors.GetHint(err))
}

func TestSync_RejectsConcurrentRun(t *testing.T) {
	h := newHarness(t)
	held, err := sync.AcquireLock(h.env.Paths.LockFile())
	require.NoError(t, err)

	_, err = h.orch.Sync(context.Background(), sync.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocked))
	h.vcs.AssertNotCalled(t, "Fetch", mock.Anything)

	require.NoError(t, held.Release())
	require.NoError(t, held.Release())

	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change(nil), nil)
	h.vcs.On("LocalTip").Return("aaa", nil)
	h.vcs.On("RemoteTip").Return("aaa", nil)
	h.vcs.On("IsDirty", mock.Anything).Return(false, nil)
	_, err = h.orch.Sync(context.Background(), sync.Options{})
	require.NoError(t, err)
}

func TestAcquireLock_ReportsHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sync", "sync.lock")
	first, err := sync.AcquireLock(path)
	require.NoError(t, err)
	defer func() { _ = first.Release() }()

	_, err = sync.AcquireLock(path)
	require.Error(t, err)
	var csErr *errors.CsyncError
	require.True(t, stderrors.As(err, &csErr))
	assert.Equal(t, errors.ErrLocked, csErr.Code)
	assert.Contains(t, csErr.Details["holder"], "pid ")
}

func TestSync_ExportsMetrics(t *testing.T) {
	h := newHarness(t)
	promFile := filepath.Join(t.TempDir(), "csync.prom")
	h.deps.Metrics = metrics.NewTextfileExporter(promFile)
	h.rebuild()
	h.vcs.On("Fetch", mock.Anything).Return(nil)
	h.vcs.On("Status", mock.Anything).Return([]vcs.Change(nil), nil)
	h.vcs.On("LocalTip").Return("aaa", nil)
	h.vcs.On("RemoteTip").Return("aaa", nil)
	h.vcs.On("IsDirty", mock.Anything).Return(false, nil)

	_, err := h.orch.Sync(context.Background(), sync.Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(promFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "csync_last_sync_success 1")
	assert.Contains(t, string(data), "csync_backups 1")
}

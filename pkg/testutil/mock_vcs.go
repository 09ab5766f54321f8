package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jtele2/csync/pkg/vcs"
)

// MockVCS is a testify mock of vcs.VersionControl.
type MockVCS struct {
	mock.Mock
}

var _ vcs.VersionControl = (*MockVCS)(nil)

func (m *MockVCS) IsRepository() bool {
	return m.Called().Bool(0)
}

func (m *MockVCS) Init(ctx context.Context, remoteURL string) error {
	return m.Called(ctx, remoteURL).Error(0)
}

func (m *MockVCS) Fetch(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) LocalTip() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockVCS) RemoteTip() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockVCS) MergeBase(a, b string) (string, error) {
	args := m.Called(a, b)
	return args.String(0), args.Error(1)
}

func (m *MockVCS) CurrentBranch() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockVCS) Status(ctx context.Context) ([]vcs.Change, error) {
	args := m.Called(ctx)
	changes, _ := args.Get(0).([]vcs.Change)
	return changes, args.Error(1)
}

func (m *MockVCS) IsDirty(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockVCS) StashPush(ctx context.Context, message string) (bool, error) {
	args := m.Called(ctx, message)
	return args.Bool(0), args.Error(1)
}

func (m *MockVCS) StashPop(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) PullRebase(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) AbortRebase(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) PullMerge(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) AbortMerge(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) Push(ctx context.Context, force bool) error {
	return m.Called(ctx, force).Error(0)
}

func (m *MockVCS) ResetHard(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) AddAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockVCS) Add(ctx context.Context, paths ...string) error {
	return m.Called(ctx, paths).Error(0)
}

func (m *MockVCS) Remove(ctx context.Context, paths ...string) error {
	return m.Called(ctx, paths).Error(0)
}

func (m *MockVCS) Commit(ctx context.Context, message string) error {
	return m.Called(ctx, message).Error(0)
}

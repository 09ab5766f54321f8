package vcs

import (
	"context"
)

// VersionControl is everything csync asks of the working copy.
type VersionControl interface {
	// IsRepository reports whether the working copy is a git repository.
	IsRepository() bool
	// Init creates the repository, adds the remote and checks out the
	// sync branch from it.
	Init(ctx context.Context, remoteURL string) error

	Fetch(ctx context.Context) error
	LocalTip() (string, error)
	RemoteTip() (string, error)
	MergeBase(a, b string) (string, error)
	CurrentBranch() (string, error)

	// Status lists tracked modifications and untracked, non-ignored files.
	// The metadata directory is never reported.
	Status(ctx context.Context) ([]Change, error)
	IsDirty(ctx context.Context) (bool, error)

	// StashPush stashes everything including untracked files, except the
	// metadata directory. created is false when git had nothing to stash.
	StashPush(ctx context.Context, message string) (created bool, err error)
	StashPop(ctx context.Context) error

	PullRebase(ctx context.Context) error
	AbortRebase(ctx context.Context) error
	PullMerge(ctx context.Context) error
	AbortMerge(ctx context.Context) error

	Push(ctx context.Context, force bool) error
	// ResetHard moves the branch and working tree to the remote tip.
	ResetHard(ctx context.Context) error

	// AddAll stages every change honouring ignore rules.
	AddAll(ctx context.Context) error
	Add(ctx context.Context, paths ...string) error
	Remove(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
}

// Change is one entry of the porcelain status.
type Change struct {
	Path string
	// Index and Worktree are the two porcelain status letters.
	Index    byte
	Worktree byte
}

// Untracked reports a file git does not know about yet.
func (c Change) Untracked() bool {
	return c.Index == '?' && c.Worktree == '?'
}

// Modified reports a change to a tracked file that is not staged yet.
func (c Change) Modified() bool {
	return !c.Untracked() && c.Worktree != ' '
}

// Describe renders the change the way git status --short does.
func (c Change) Describe() string {
	return string([]byte{c.Index, c.Worktree}) + " " + c.Path
}

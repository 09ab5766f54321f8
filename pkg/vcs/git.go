package vcs

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/paths"
)

// worktreeSpec limits working tree commands to the repository minus the
// metadata directory. The lock, backups and sync status live there and must
// stay on disk whether or not .gitignore lists them.
var worktreeSpec = []string{"--", ".", ":(exclude)" + paths.SyncDirName}

// Git drives the repository at Dir.
type Git struct {
	dir    string
	remote string
	branch string
	logger zerolog.Logger
}

var _ VersionControl = (*Git)(nil)

// NewGit returns a client for the working copy at dir syncing branch with
// remote.
func NewGit(dir, remote, branch string) *Git {
	return &Git{
		dir:    dir,
		remote: remote,
		branch: branch,
		logger: logging.GetLogger("vcs"),
	}
}

// Dir returns the working copy.
func (g *Git) Dir() string { return g.dir }

// run executes git in the working copy and returns its combined output.
func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", g.dir}, args...)
	logging.LogCommand("git", full)

	// #nosec G204 -- fixed binary, arguments built by this package
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		g.logger.Debug().Strs("args", args).Str("output", output).Err(err).Msg("git failed")
		return output, errors.Wrapf(err, errors.ErrVCS, "git %s", strings.Join(args, " ")).
			WithDetail("output", output)
	}
	return output, nil
}

func (g *Git) open() (*git.Repository, error) {
	repo, err := git.PlainOpen(g.dir)
	if err != nil {
		if err == git.ErrRepositoryNotExists {
			return nil, errors.Wrapf(err, errors.ErrNoRepo, "%s is not a git repository", g.dir)
		}
		return nil, errors.Wrapf(err, errors.ErrVCS, "failed to open repository at %s", g.dir)
	}
	return repo, nil
}

func (g *Git) IsRepository() bool {
	_, err := g.open()
	return err == nil
}

func (g *Git) Init(ctx context.Context, remoteURL string) error {
	if g.IsRepository() {
		return nil
	}
	g.logger.Info().Str("dir", g.dir).Str("remote", remoteURL).Msg("Initializing repository")

	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", g.dir)
	}
	if _, err := g.run(ctx, "init"); err != nil {
		return err
	}
	if _, err := g.run(ctx, "remote", "add", g.remote, remoteURL); err != nil {
		return err
	}
	if err := g.Fetch(ctx); err != nil {
		return err
	}
	_, err := g.run(ctx, "checkout", "-B", g.branch, "--track", g.remote+"/"+g.branch)
	return err
}

func (g *Git) Fetch(ctx context.Context) error {
	if _, err := g.run(ctx, "fetch", g.remote); err != nil {
		return errors.Wrapf(err, errors.ErrNetworkUnavailable, "cannot reach remote %s", g.remote)
	}
	return nil
}

func (g *Git) LocalTip() (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrVCS, "failed to resolve HEAD")
	}
	return head.Hash().String(), nil
}

func (g *Git) RemoteTip() (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	ref, err := repo.Reference(plumbing.NewRemoteReferenceName(g.remote, g.branch), true)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrVCS, "failed to resolve %s/%s", g.remote, g.branch)
	}
	return ref.Hash().String(), nil
}

func (g *Git) MergeBase(a, b string) (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	left, err := repo.CommitObject(plumbing.NewHash(a))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrVCS, "unknown commit %s", a)
	}
	right, err := repo.CommitObject(plumbing.NewHash(b))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrVCS, "unknown commit %s", b)
	}
	bases, err := left.MergeBase(right)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrVCS, "failed to compute merge base")
	}
	if len(bases) == 0 {
		return "", nil
	}
	return bases[0].Hash.String(), nil
}

func (g *Git) CurrentBranch() (string, error) {
	repo, err := g.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrVCS, "failed to resolve HEAD")
	}
	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}

func (g *Git) Status(ctx context.Context) ([]Change, error) {
	args := append([]string{"status", "--porcelain=v1", "-z", "--untracked-files=all"}, worktreeSpec...)
	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// parsePorcelain reads NUL separated porcelain v1 output. Renames and copies
// carry their source path as an extra record, which is skipped.
func parsePorcelain(out string) []Change {
	var changes []Change
	records := strings.Split(out, "\x00")
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 {
			continue
		}
		c := Change{Index: rec[0], Worktree: rec[1], Path: rec[3:]}
		changes = append(changes, c)
		if c.Index == 'R' || c.Index == 'C' {
			i++
		}
	}
	return changes
}

func (g *Git) IsDirty(ctx context.Context) (bool, error) {
	changes, err := g.Status(ctx)
	if err != nil {
		return false, err
	}
	return len(changes) > 0, nil
}

// stashRef returns the current refs/stash hash, empty when no stash exists.
func (g *Git) stashRef(ctx context.Context) string {
	out, err := g.run(ctx, "rev-parse", "-q", "--verify", "refs/stash")
	if err != nil {
		return ""
	}
	return out
}

func (g *Git) StashPush(ctx context.Context, message string) (bool, error) {
	before := g.stashRef(ctx)
	args := append([]string{"stash", "push", "--include-untracked", "-m", message}, worktreeSpec...)
	if _, err := g.run(ctx, args...); err != nil {
		return false, err
	}
	after := g.stashRef(ctx)
	return after != "" && after != before, nil
}

func (g *Git) StashPop(ctx context.Context) error {
	if _, err := g.run(ctx, "stash", "pop"); err != nil {
		return errors.Wrap(err, errors.ErrStashConflict, "conflicts while applying stashed changes").
			WithHint("resolve the conflicts, then run 'git stash drop'")
	}
	return nil
}

func (g *Git) PullRebase(ctx context.Context) error {
	_, err := g.run(ctx, "pull", "--rebase", g.remote, g.branch)
	return err
}

func (g *Git) AbortRebase(ctx context.Context) error {
	_, err := g.run(ctx, "rebase", "--abort")
	return err
}

func (g *Git) PullMerge(ctx context.Context) error {
	_, err := g.run(ctx, "pull", "--no-rebase", "--no-edit", g.remote, g.branch)
	return err
}

func (g *Git) AbortMerge(ctx context.Context) error {
	_, err := g.run(ctx, "merge", "--abort")
	return err
}

func (g *Git) Push(ctx context.Context, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, g.remote, g.branch+":"+g.branch)
	if _, err := g.run(ctx, args...); err != nil {
		return errors.Wrapf(err, errors.ErrNetworkUnavailable, "failed to push to %s", g.remote)
	}
	return nil
}

func (g *Git) ResetHard(ctx context.Context) error {
	_, err := g.run(ctx, "reset", "--hard", g.remote+"/"+g.branch)
	return err
}

func (g *Git) AddAll(ctx context.Context) error {
	_, err := g.run(ctx, append([]string{"add", "--all"}, worktreeSpec...)...)
	return err
}

func (g *Git) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

func (g *Git) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := g.run(ctx, append([]string{"rm", "-r", "-q", "--"}, paths...)...)
	return err
}

func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-q", "-m", message)
	return err
}

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

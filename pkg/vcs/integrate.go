package vcs

import (
	"context"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
)

// ConflictHint is shown when neither rebase nor merge could integrate the
// remote branch.
const ConflictHint = "try --force-pull or --force-push"

// Integrate brings the remote branch into the local one. A rebase pull is
// tried first; when it fails the rebase is aborted and a single merge pull is
// attempted. If that fails too the merge is aborted, leaving the working copy
// as it was, and a MERGE_CONFLICT error is returned.
func Integrate(ctx context.Context, v VersionControl) error {
	logger := logging.GetLogger("vcs")

	rebaseErr := v.PullRebase(ctx)
	if rebaseErr == nil {
		return nil
	}
	logger.Warn().Err(rebaseErr).Msg("Rebase failed, attempting merge")
	if err := v.AbortRebase(ctx); err != nil {
		logger.Debug().Err(err).Msg("Rebase abort reported an error")
	}

	mergeErr := v.PullMerge(ctx)
	if mergeErr == nil {
		return nil
	}
	if err := v.AbortMerge(ctx); err != nil {
		logger.Debug().Err(err).Msg("Merge abort reported an error")
	}

	return errors.Wrap(mergeErr, errors.ErrMergeConflict, "merge failed, manual intervention required").
		WithHint(ConflictHint)
}

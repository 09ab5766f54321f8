// Package vcs is csync's narrow view of git.
//
// Queries (tips, merge base, current branch) read the repository directly
// through go-git. Mutations that go-git does not implement, or implements
// without the porcelain semantics users expect (rebase, stash, merge,
// ignore-aware staging, pushes over the user's ssh setup), run the git
// binary in the working copy.
//
// Integrate holds the single retry policy of the tool: a rebase pull that
// falls back to one merge pull.
package vcs

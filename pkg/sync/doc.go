// Package sync runs the csync synchronization workflow.
//
// One Sync call walks the working copy through
//
//	IDLE -> CHECKING_NETWORK -> BACKING_UP -> RESOLVING_LOCAL_CHANGES ->
//	RECONCILING_REMOTE -> RECONCILING_MARKED_FILES -> COMMITTING -> PUSHING -> DONE
//
// with ERROR reachable from every step. The working copy is owned by one
// invocation at a time: an advisory lock under .sync/ is taken without
// blocking and a second concurrent sync fails with LOCKED.
//
// Local changes are stashed before remote changes are integrated and popped
// afterwards. Whether this run created the stash is remembered in memory, so
// stashes left by the user or by an earlier run are never popped.
package sync

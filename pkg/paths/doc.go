// Package paths resolves the machine profile and every canonical location
// csync reads or writes.
//
// The configs directory depends on the detected machine type:
//
//   - ec2:   ~/configs   (detected through /etc/ec2-metadata or a
//     /sys/hypervisor/uuid starting with "ec2")
//   - mac:   ~/dev/configs
//   - linux: ~/configs
//
// The paths.configs_dir setting (or CSYNC_CONFIGS_DIR) overrides detection of
// the directory but not of the machine type.
//
// Layout under the configs directory:
//
//	.sync/backups/      tar.gz snapshots
//	.sync/machine-id    persisted machine identifier
//	.sync/last-sync     timestamp of the last successful sync
//	.sync/sync-status   single prompt token
//	.sync/sync.lock     advisory lock held during sync
//	.marked-files       newline-delimited marked entries
//	external/           relocated marked files
package paths

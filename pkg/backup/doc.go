// Package backup snapshots the configs directory into timestamped tar.gz
// archives under .sync/backups and restores them.
//
// Archives are named backup-YYYYMMDD-HHMMSS.tar.gz in local time, so
// lexical order is chronological order. Only the newest archives are kept.
// Top-level entries matching the exclusion list (VCS metadata, sync
// metadata, OS artifacts) or ending in an excluded suffix such as .local are
// never archived.
package backup

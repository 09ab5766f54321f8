package csync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort           = "Sync shell configuration across machines through git"
	MsgSyncShort           = "Sync the configs repository with its remote"
	MsgSetupShort          = "Set up this machine for syncing"
	MsgStatusShort         = "Show sync status and information"
	MsgMarkShort           = "Mark a file or directory for syncing"
	MsgUnmarkShort         = "Stop syncing a marked file or directory"
	MsgListMarkedShort     = "List all marked files"
	MsgBackupShort         = "Create a backup of the configs directory"
	MsgRestoreShort        = "Restore the configs directory from a backup"
	MsgListBackupsShort    = "List available backups"
	MsgSetupAddonsShort    = "Install plugins, completions and other addons"
	MsgCreateSymlinksShort = "Create the standard config symlinks"
	MsgCompletionShort     = "Generate shell completion script"

	// Status messages
	MsgNoMarkedFiles     = "No marked files"
	MsgNoBackups         = "No backups found"
	MsgMarkedTitle       = "Marked Files"
	MsgBackupsTitle      = "Available Backups"
	MsgBackupCreated     = "Backup created: %s"
	MsgSelectBackup      = "Select a backup to restore"
	MsgSymlinksUpToDate  = "All symlinks already in place"
	MsgSymlinksChanged   = "Created %d symlink(s)"
	MsgInterrupted       = "Interrupted by user"
	MsgConfigsDirMissing = "configs directory not found: %s"
	MsgHintRunSetup      = "run 'csync setup' to clone it"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Config file (default $XDG_CONFIG_HOME/csync/config.toml)"
	MsgFlagForcePush  = "Overwrite the remote with the local branch"
	MsgFlagForcePull  = "Reset the local branch to the remote"
	MsgFlagDryRun     = "Show what would be done without changing anything"
	MsgFlagBackground = "Run quietly, for shell hooks"
	MsgFlagFormat     = "Output format: auto, term, text, json or yaml"
	MsgFlagForceLinks = "Replace existing files at link targets"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/mark-long.txt
	msgMarkLongRaw string
	MsgMarkLong    = strings.TrimSpace(msgMarkLongRaw)

	//go:embed msgs/restore-long.txt
	msgRestoreLongRaw string
	MsgRestoreLong    = strings.TrimSpace(msgRestoreLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)

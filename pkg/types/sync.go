package types

// MachineType identifies the kind of host csync runs on.
type MachineType string

const (
	MachineEC2   MachineType = "ec2"
	MachineMac   MachineType = "mac"
	MachineLinux MachineType = "linux"
)

// MachineProfile describes the current host and where its configs live.
type MachineProfile struct {
	Type       MachineType `json:"machine_type" yaml:"machine_type"`
	ID         string      `json:"machine_id" yaml:"machine_id"`
	ConfigsDir string      `json:"configs_dir" yaml:"configs_dir"`
	Branch     string      `json:"branch" yaml:"branch"`
}

// SyncState is the single-token status written for shell prompts.
type SyncState string

const (
	SyncStateNone       SyncState = ""
	SyncStateInProgress SyncState = "⚡"
	SyncStateSynced     SyncState = "✓"
	SyncStateError      SyncState = "✗"
)

// RemoteStatus classifies the local branch against its remote counterpart.
type RemoteStatus string

const (
	RemoteSynced   RemoteStatus = "synced"
	RemoteAhead    RemoteStatus = "ahead"
	RemoteBehind   RemoteStatus = "behind"
	RemoteDiverged RemoteStatus = "diverged"
	RemoteNoRepo   RemoteStatus = "no-repo"
	RemoteError    RemoteStatus = "error"
)

// ClassifyTips compares local and remote tips with their merge base.
func ClassifyTips(local, remote, base string) RemoteStatus {
	switch {
	case local == remote:
		return RemoteSynced
	case local == base:
		return RemoteBehind
	case remote == base:
		return RemoteAhead
	default:
		return RemoteDiverged
	}
}

package datastore

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/types"
)

// LastSyncLayout is the timestamp format written to the last-sync file.
const LastSyncLayout = "2006-01-02 15:04:05"

// DataStore manages csync's metadata files on the filesystem.
type DataStore interface {
	// MachineID returns the persisted machine id, creating it on first use.
	MachineID() (string, error)

	// SyncState reads the prompt token. A missing file reads as empty.
	SyncState() (types.SyncState, error)

	// SetSyncState overwrites the prompt token.
	SetSyncState(state types.SyncState) error

	// RecordLastSync stores the time of a successful sync.
	RecordLastSync(at time.Time) error

	// LastSync returns the stored timestamp text; ok is false when no sync
	// has been recorded yet.
	LastSync() (value string, ok bool, err error)
}

// Identity supplies the parts of a new machine id.
type Identity struct {
	User     string
	Hostname string
}

// CurrentIdentity reads $USER and the short host name.
func CurrentIdentity() Identity {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	return Identity{User: user, Hostname: host}
}

type filesystemDataStore struct {
	fs       types.FS
	paths    *paths.Paths
	identity Identity
}

// New creates a DataStore that reads and writes below paths.SyncDir().
func New(fs types.FS, p *paths.Paths, identity Identity) DataStore {
	return &filesystemDataStore{
		fs:       fs,
		paths:    p,
		identity: identity,
	}
}

// MachineID formats $USER@<short-host>-<type>.
func (id Identity) MachineID(machineType types.MachineType) string {
	host := id.Hostname
	if i := strings.IndexByte(host, '.'); i >= 0 {
		host = host[:i]
	}
	return fmt.Sprintf("%s@%s-%s", id.User, host, machineType)
}

func (s *filesystemDataStore) MachineID() (string, error) {
	logger := logging.GetLogger("datastore")
	path := s.paths.MachineIDFile()

	data, err := s.fs.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
	}

	id := s.identity.MachineID(s.paths.MachineType())
	if err := s.write(path, id); err != nil {
		return "", err
	}
	logger.Info().Str("machine_id", id).Msg("Created machine id")
	return id, nil
}

func (s *filesystemDataStore) SyncState() (types.SyncState, error) {
	data, err := s.fs.ReadFile(s.paths.SyncStatusFile())
	if err != nil {
		if os.IsNotExist(err) {
			return types.SyncStateNone, nil
		}
		return types.SyncStateNone, errors.Wrap(err, errors.ErrFileAccess, "failed to read sync status")
	}
	return types.SyncState(strings.TrimSpace(string(data))), nil
}

func (s *filesystemDataStore) SetSyncState(state types.SyncState) error {
	logger := logging.GetLogger("datastore")
	logger.Debug().Str("state", string(state)).Msg("Sync state")
	return s.write(s.paths.SyncStatusFile(), string(state))
}

func (s *filesystemDataStore) RecordLastSync(at time.Time) error {
	return s.write(s.paths.LastSyncFile(), at.Format(LastSyncLayout))
}

func (s *filesystemDataStore) LastSync() (string, bool, error) {
	data, err := s.fs.ReadFile(s.paths.LastSyncFile())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, errors.Wrap(err, errors.ErrFileAccess, "failed to read last sync time")
	}
	value := strings.TrimSpace(string(data))
	return value, value != "", nil
}

func (s *filesystemDataStore) write(path, content string) error {
	if err := s.fs.MkdirAll(s.paths.SyncDir(), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", s.paths.SyncDir())
	}
	if err := s.fs.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	return nil
}

package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/jtele2/csync/pkg/errors"
)

// Lock is the advisory lock guarding the working copy. The OS releases it
// when the process exits, crashes included.
type Lock struct {
	path  string
	flock *flock.Flock
}

// AcquireLock takes the lock at path without waiting. A held lock returns a
// LOCKED error naming the holder.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", filepath.Dir(path))
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to lock %s", path)
	}
	if !locked {
		return nil, errors.New(errors.ErrLocked, "another sync is already running").
			WithDetail("lock", path).
			WithDetail("holder", readHolder(path)).
			WithHint("wait for it to finish and try again")
	}

	l := &Lock{path: path, flock: fl}
	l.writeHolder()
	return l, nil
}

// Release drops the lock. Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}
	_ = os.Truncate(l.path, 0)
	err := l.flock.Unlock()
	l.flock = nil
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to unlock %s", l.path)
	}
	return nil
}

// writeHolder records who holds the lock for the LOCKED message.
func (l *Lock) writeHolder() {
	info := fmt.Sprintf("pid:%d\ntime:%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	_ = os.WriteFile(l.path, []byte(info), 0600)
}

func readHolder(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	var pid, at string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		switch {
		case strings.HasPrefix(line, "pid:"):
			pid = strings.TrimPrefix(line, "pid:")
		case strings.HasPrefix(line, "time:"):
			at = strings.TrimPrefix(line, "time:")
		}
	}
	if pid == "" {
		return "unknown"
	}
	return fmt.Sprintf("pid %s since %s", pid, at)
}

package marked

import (
	"os"
	"strings"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/paths"
)

// Load reads the marked list. A missing file is an empty list; blank lines,
// duplicates and entries escaping the home directory are dropped.
func (m *Manager) Load() ([]string, error) {
	data, err := m.fs.ReadFile(m.paths.MarkedFilesList())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read marked files list")
	}
	return parseList(string(data)), nil
}

func parseList(content string) []string {
	logger := logging.GetLogger("marked")
	seen := make(map[string]bool)
	var entries []string
	for _, line := range strings.Split(content, "\n") {
		entry := strings.TrimSpace(line)
		if entry == "" || seen[entry] {
			continue
		}
		if err := paths.ValidateRelative(entry); err != nil {
			logger.Warn().Str("entry", entry).Err(err).Msg("Ignoring invalid marked entry")
			continue
		}
		seen[entry] = true
		entries = append(entries, entry)
	}
	return entries
}

func (m *Manager) save(entries []string) error {
	content := strings.Join(entries, "\n")
	if content != "" {
		content += "\n"
	}
	if err := m.fs.WriteFile(m.paths.MarkedFilesList(), []byte(content), 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write marked files list")
	}
	return nil
}

func contains(entries []string, entry string) bool {
	for _, e := range entries {
		if e == entry {
			return true
		}
	}
	return false
}

func without(entries []string, entry string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e != entry {
			out = append(out, e)
		}
	}
	return out
}

package status

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/style"
	"github.com/jtele2/csync/pkg/ui"
)

// Title heads the status panel.
const Title = "Config Sync Status"

// MarkedPreview decides which marked entries are shown: all of them up to
// five, otherwise the first three and a count of the rest.
func MarkedPreview(entries []string) (shown []string, more int) {
	if len(entries) <= 5 {
		return entries, 0
	}
	return entries[:3], len(entries) - 3
}

// Render writes r. Machine formats go to w; everything else is a panel on
// the reporter.
func (r *Report) Render(format ui.Format, w io.Writer, reporter output.Reporter) error {
	if format.IsMachine() {
		return output.WriteMachine(w, format, r)
	}
	reporter.Panel(Title, r.Body())
	return nil
}

// Body lays out the panel content.
func (r *Report) Body() string {
	var b strings.Builder
	section := func(title string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(style.SectionStyle.Render(title) + "\n")
	}
	line := func(format string, args ...interface{}) {
		b.WriteString("  " + fmt.Sprintf(format, args...) + "\n")
	}

	section("Machine Info")
	line("Type: %s", r.Machine.Type)
	line("ID: %s", r.Machine.ID)
	line("Config Path: %s", style.PathStyle.Render(r.Machine.ConfigsDir))

	section("Sync Status")
	line("%s", style.RemoteStatus(r.Remote).Render())
	lastSync := r.LastSync
	if lastSync == Never {
		lastSync = "Never"
	}
	line("Last sync: %s", lastSync)

	section("Marked Files")
	line("Count: %d files", len(r.MarkedFiles))
	shown, more := MarkedPreview(r.MarkedFiles)
	for _, entry := range shown {
		line("  - %s", entry)
	}
	if more > 0 {
		line("  ... and %d more", more)
	}

	section("Symlinks")
	for _, l := range r.Links {
		indicator := style.ErrorIndicator
		if l.Linked {
			indicator = style.SuccessIndicator
		}
		line("%s %s -> %s", indicator, LinkName(l), filepath.Base(l.Source))
	}

	section("Backups")
	line("Count: %d backups", r.Backups)
	if r.LatestBackup != "" {
		line("Latest: %s", r.LatestBackup)
	}

	if r.Branch != "" {
		section("Git Status")
		line("Branch: %s", r.Branch)
		line("Uncommitted changes: %d", r.Uncommitted)
	}
	return strings.TrimRight(b.String(), "\n")
}

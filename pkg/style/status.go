package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jtele2/csync/pkg/types"
)

// RemoteStatusLine is how one sync classification is shown.
type RemoteStatusLine struct {
	Icon        string
	Label       string
	Description string
	Style       lipgloss.Style
}

var remoteStatusLines = map[types.RemoteStatus]RemoteStatusLine{
	types.RemoteSynced:   {Icon: "✓", Label: "Synced", Description: "Everything up to date", Style: SuccessStyle},
	types.RemoteAhead:    {Icon: "↑", Label: "Ahead", Description: "Local changes need pushing", Style: WarningStyle},
	types.RemoteBehind:   {Icon: "↓", Label: "Behind", Description: "Remote changes available", Style: InfoStyle},
	types.RemoteDiverged: {Icon: "⟷", Label: "Diverged", Description: "Both local and remote changes", Style: ErrorStyle},
	types.RemoteNoRepo:   {Icon: "✗", Label: "No repository", Description: "Run setup first", Style: ErrorStyle},
	types.RemoteError:    {Icon: "✗", Label: "Error", Description: "Could not determine status", Style: ErrorStyle},
}

// RemoteStatus returns the display line for status.
func RemoteStatus(status types.RemoteStatus) RemoteStatusLine {
	if line, ok := remoteStatusLines[status]; ok {
		return line
	}
	return RemoteStatusLine{Icon: "?", Label: "Unknown", Description: string(status), Style: MutedStyle}
}

// Render formats the line as "<icon> <label> - <description>".
func (l RemoteStatusLine) Render() string {
	return l.Style.Render(l.Icon+" "+l.Label) + " - " + l.Description
}

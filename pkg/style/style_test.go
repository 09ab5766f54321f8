package style_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/jtele2/csync/pkg/style"
	"github.com/jtele2/csync/pkg/types"
)

func TestRemoteStatus_KnownStates(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	tests := []struct {
		status types.RemoteStatus
		want   string
	}{
		{types.RemoteSynced, "✓ Synced - Everything up to date"},
		{types.RemoteAhead, "↑ Ahead - Local changes need pushing"},
		{types.RemoteBehind, "↓ Behind - Remote changes available"},
		{types.RemoteDiverged, "⟷ Diverged - Both local and remote changes"},
		{types.RemoteNoRepo, "✗ No repository - Run setup first"},
		{types.RemoteError, "✗ Error - Could not determine status"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, style.RemoteStatus(tt.status).Render())
		})
	}
}

func TestRemoteStatus_Unknown(t *testing.T) {
	line := style.RemoteStatus("sideways")
	assert.Equal(t, "Unknown", line.Label)
	assert.Equal(t, "sideways", line.Description)
}

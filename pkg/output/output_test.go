// pkg/output/output_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test reporter implementations

package output_test

import (
	"bytes"
	"testing"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_PlainOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	c := output.NewConsole(&out, &errOut, false)

	c.Info("Creating backup: %s", "backup-20240101-120000.tar.gz")
	c.Success("Pushed to remote")
	c.Warn("External file missing: %s", ".aws/config")
	c.DryRun("Would stash local changes")
	c.Error("Cannot reach remote repository")

	assert.Contains(t, out.String(), "• Creating backup: backup-20240101-120000.tar.gz\n")
	assert.Contains(t, out.String(), "✓ Pushed to remote\n")
	assert.Contains(t, out.String(), "! External file missing: .aws/config\n")
	assert.Contains(t, out.String(), "DRY RUN: Would stash local changes\n")
	assert.NotContains(t, out.String(), "Cannot reach")
	assert.Equal(t, "✗ Cannot reach remote repository\n", errOut.String())
}

func TestConsole_TableAndPanel(t *testing.T) {
	var out bytes.Buffer
	c := output.NewConsole(&out, &out, false)

	c.Table("Available Backups", []string{"Backup File", "Size"}, [][]string{
		{"backup-20240102-000000.tar.gz", "0.1 MB"},
	})
	c.Panel("Config Sync Status", "Machine Info")

	assert.Contains(t, out.String(), "Available Backups")
	assert.Contains(t, out.String(), "backup-20240102-000000.tar.gz")
	assert.Contains(t, out.String(), "Config Sync Status")
	assert.Contains(t, out.String(), "╭")
}

func TestQuiet_KeepsWarningsAndErrors(t *testing.T) {
	rec := &output.Recorder{}
	q := output.NewQuiet(rec)

	q.Info("Starting sync")
	q.Success("Done")
	q.Table("t", nil, [][]string{{"x"}})
	q.Panel("p", "body")
	q.Warn("Rebase failed, attempting merge")
	q.Error("Merge failed")
	q.DryRun("Would push")

	assert.Empty(t, rec.Messages(output.LevelInfo))
	assert.Empty(t, rec.Messages(output.LevelSuccess))
	assert.Empty(t, rec.Tables)
	assert.Empty(t, rec.Panels)
	assert.Equal(t, []string{"Rebase failed, attempting merge"}, rec.Messages(output.LevelWarn))
	assert.Equal(t, []string{"Merge failed"}, rec.Messages(output.LevelError))
	assert.True(t, rec.Contains(output.LevelDryRun, "push"))
}

func TestRenderMarkdown_Plain(t *testing.T) {
	rendered, err := output.RenderMarkdown("# Next steps\n\n1. Run `csync`\n", 80, false)
	require.NoError(t, err)
	assert.Contains(t, rendered, "Next steps")
	assert.Contains(t, rendered, "csync")
}

func TestWriteMachine(t *testing.T) {
	v := struct {
		Name  string `json:"name" yaml:"name"`
		Count int    `json:"count" yaml:"count"`
	}{Name: "laptop", Count: 2}

	var buf bytes.Buffer
	require.NoError(t, output.WriteMachine(&buf, ui.FormatJSON, v))
	assert.JSONEq(t, `{"name":"laptop","count":2}`, buf.String())

	buf.Reset()
	require.NoError(t, output.WriteMachine(&buf, ui.FormatYAML, v))
	assert.YAMLEq(t, "name: laptop\ncount: 2\n", buf.String())

	err := output.WriteMachine(&buf, ui.FormatText, v)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

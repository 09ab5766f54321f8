package ui_test

import (
	"os"
	"testing"

	"github.com/jtele2/csync/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatString(t *testing.T) {
	tests := []struct {
		format   ui.Format
		expected string
	}{
		{ui.FormatAuto, "auto"},
		{ui.FormatTerminal, "term"},
		{ui.FormatText, "text"},
		{ui.FormatJSON, "json"},
		{ui.FormatYAML, "yaml"},
		{ui.Format(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.format.String())
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ui.Format
		wantErr  bool
	}{
		{name: "parse empty string as auto", input: "", expected: ui.FormatAuto},
		{name: "parse terminal", input: "terminal", expected: ui.FormatTerminal},
		{name: "parse plain", input: "plain", expected: ui.FormatText},
		{name: "parse mixed case JSON", input: "Json", expected: ui.FormatJSON},
		{name: "parse yml", input: "yml", expected: ui.FormatYAML},
		{name: "parse invalid format", input: "xml", expected: ui.FormatAuto, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := ui.ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "unknown format")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, format)
			}
		})
	}
}

func TestDetectFormat_PipeIsText(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	defer func() { _ = w.Close() }()

	assert.False(t, ui.IsTerminal(w))
	assert.Equal(t, ui.FormatText, ui.DetectFormat(w))
	assert.Equal(t, ui.FormatText, ui.FormatAuto.Resolve(w))
	assert.Equal(t, ui.FormatJSON, ui.FormatJSON.Resolve(w))
	assert.True(t, ui.FormatYAML.IsMachine())
	assert.False(t, ui.FormatText.IsMachine())
}

func TestDefaultsPrompter(t *testing.T) {
	p := ui.DefaultsPrompter{}

	ok, err := p.Confirm("Install?", false)
	require.NoError(t, err)
	assert.False(t, ok)

	idx, err := p.Select("Pick", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = p.Select("Pick", nil)
	assert.Error(t, err)
}

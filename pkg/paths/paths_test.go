// pkg/paths/paths_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (temp dirs)
// PURPOSE: Test machine detection and canonical path resolution

package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMachineType(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
		goos  string
		want  types.MachineType
	}{
		{
			name: "ec2 metadata file",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.MkdirAll(filepath.Join(root, "etc"), 0755))
				require.NoError(t, os.WriteFile(filepath.Join(root, "etc", "ec2-metadata"), nil, 0644))
			},
			goos: "linux",
			want: types.MachineEC2,
		},
		{
			name: "ec2 hypervisor uuid",
			setup: func(t *testing.T, root string) {
				dir := filepath.Join(root, "sys", "hypervisor")
				require.NoError(t, os.MkdirAll(dir, 0755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "uuid"), []byte("ec2e1916-9099-7caf"), 0644))
			},
			goos: "linux",
			want: types.MachineEC2,
		},
		{
			name: "non ec2 hypervisor uuid",
			setup: func(t *testing.T, root string) {
				dir := filepath.Join(root, "sys", "hypervisor")
				require.NoError(t, os.MkdirAll(dir, 0755))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "uuid"), []byte("4b5e0d2a"), 0644))
			},
			goos: "linux",
			want: types.MachineLinux,
		},
		{
			name: "darwin",
			goos: "darwin",
			want: types.MachineMac,
		},
		{
			name: "plain linux",
			goos: "linux",
			want: types.MachineLinux,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.setup != nil {
				tt.setup(t, root)
			}
			assert.Equal(t, tt.want, paths.DetectMachineType(root, tt.goos))
		})
	}
}

func TestNew_DefaultConfigsDir(t *testing.T) {
	home := t.TempDir()

	mac, err := paths.New(paths.Options{Home: home, Root: t.TempDir(), GOOS: "darwin", Branch: "main"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "dev", "configs"), mac.ConfigsDir())
	assert.Equal(t, types.MachineMac, mac.MachineType())

	linux, err := paths.New(paths.Options{Home: home, Root: t.TempDir(), GOOS: "linux"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "configs"), linux.ConfigsDir())
}

func TestNew_Layout(t *testing.T) {
	home := t.TempDir()
	p, err := paths.New(paths.Options{Home: home, ConfigsDir: "~/dots", Root: t.TempDir(), GOOS: "linux", Branch: "main"})
	require.NoError(t, err)

	configs := filepath.Join(home, "dots")
	assert.Equal(t, configs, p.ConfigsDir())
	assert.Equal(t, filepath.Join(configs, ".sync"), p.SyncDir())
	assert.Equal(t, filepath.Join(configs, ".sync", "backups"), p.BackupsDir())
	assert.Equal(t, filepath.Join(configs, ".sync", "machine-id"), p.MachineIDFile())
	assert.Equal(t, filepath.Join(configs, ".sync", "last-sync"), p.LastSyncFile())
	assert.Equal(t, filepath.Join(configs, ".sync", "sync-status"), p.SyncStatusFile())
	assert.Equal(t, filepath.Join(configs, ".sync", "sync.lock"), p.LockFile())
	assert.Equal(t, filepath.Join(configs, ".marked-files"), p.MarkedFilesList())
	assert.Equal(t, filepath.Join(configs, "external", ".aws", "config"), p.ExternalPath(".aws/config"))
	assert.Equal(t, filepath.Join(home, ".aws", "config"), p.HomePath(".aws/config"))
	assert.False(t, p.ConfigsDirExists())

	profile := p.Profile("me@box-linux")
	assert.Equal(t, types.MachineLinux, profile.Type)
	assert.Equal(t, "main", profile.Branch)
}

func TestResolveUnderHome(t *testing.T) {
	home := t.TempDir()
	p, err := paths.New(paths.Options{Home: home, Root: t.TempDir(), GOOS: "linux"})
	require.NoError(t, err)

	abs, rel, err := p.ResolveUnderHome("~/.config/nvim")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "nvim"), abs)
	assert.Equal(t, filepath.Join(".config", "nvim"), rel)

	_, _, err = p.ResolveUnderHome(filepath.Join(home, "..", "elsewhere"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, _, err = p.ResolveUnderHome("~")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), "home itself cannot be marked")

	_, _, err = p.ResolveUnderHome("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestValidateRelative(t *testing.T) {
	assert.NoError(t, paths.ValidateRelative("zshrc"))
	assert.NoError(t, paths.ValidateRelative("a/b/../c"))
	assert.Error(t, paths.ValidateRelative("../etc/passwd"))
	assert.Error(t, paths.ValidateRelative("/etc/passwd"))
	assert.Error(t, paths.ValidateRelative("a/../../b"))
}

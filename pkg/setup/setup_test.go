// pkg/setup/setup_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: temp home, MockVCS; git binary for the clone case
// PURPOSE: Test machine bootstrap

package setup_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/setup"
	"github.com/jtele2/csync/pkg/symlinks"
	"github.com/jtele2/csync/pkg/testutil"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/vcs"
)

func setupFor(env *testutil.TestEnvironment, v vcs.VersionControl, remoteURL string, out io.Writer) (*setup.Setup, *output.Recorder) {
	rec := &output.Recorder{}
	return setup.New(setup.Deps{
		FS:        env.FS,
		Paths:     env.Paths,
		VCS:       v,
		Store:     env.DataStore,
		Links:     symlinks.New(env.FS, env.Paths, config.Default().Links, rec),
		Reporter:  rec,
		RemoteURL: remoteURL,
		Out:       out,
	}), rec
}

func TestRun_ExistingRepository(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v := &testutil.MockVCS{}
	v.On("IsRepository").Return(true)

	env.WriteConfig("zshrc", "export A=1\n")
	env.WriteConfig(".gitignore", "node_modules/\n")
	env.WriteHome(".zshrc", "old\n")
	require.NoError(t, env.DataStore.SetSyncState(types.SyncStateError))

	var out bytes.Buffer
	s, rec := setupFor(env, v, "", &out)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "tester@machine-linux", res.MachineID)
	assert.False(t, res.ClonedRepository)
	assert.True(t, res.CreatedZshrcLocal)
	assert.True(t, res.UpdatedGitignore)

	assert.DirExists(t, env.Paths.BackupsDir())
	assert.DirExists(t, env.Paths.ExternalDir())
	assert.FileExists(t, env.Paths.MarkedFilesList())
	assert.Empty(t, env.ReadFile(env.Paths.MarkedFilesList()))

	target, err := os.Readlink(env.Paths.HomePath(".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, env.Paths.ConfigsPath("zshrc"), target)

	local := env.ReadFile(env.Paths.ConfigsPath("zshrc.local"))
	assert.Contains(t, local, "# Machine-specific configuration for tester@machine-linux")
	assert.Contains(t, local, "# Machine type: linux")
	assert.Contains(t, local, "# Config path: "+env.ConfigsDir)

	assert.Equal(t, "node_modules/\n\n# Sync system files\n.sync/\n*.local\n", env.ReadFile(env.Paths.ConfigsPath(".gitignore")))

	state, err := env.DataStore.SyncState()
	require.NoError(t, err)
	assert.Equal(t, types.SyncStateNone, state)
	assert.FileExists(t, env.Paths.SyncStatusFile())

	assert.True(t, rec.Contains(output.LevelSuccess, "Setup complete"))
	assert.Contains(t, out.String(), "Next steps")
	assert.Contains(t, out.String(), "csync mark")
}

func TestRun_IsIdempotent(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v := &testutil.MockVCS{}
	v.On("IsRepository").Return(true)
	env.WriteConfig(".gitignore", "node_modules/\n")

	s, _ := setupFor(env, v, "", nil)
	_, err := s.Run(context.Background())
	require.NoError(t, err)

	localPath := env.Paths.ConfigsPath("zshrc.local")
	require.NoError(t, os.WriteFile(localPath, []byte("custom\n"), 0644))
	env.WriteConfig(".marked-files", ".npmrc\n")

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, res.CreatedZshrcLocal)
	assert.False(t, res.UpdatedGitignore)
	assert.Equal(t, "custom\n", env.ReadFile(localPath))
	assert.Equal(t, ".npmrc\n", env.ReadFile(env.Paths.MarkedFilesList()))
	assert.Equal(t, "node_modules/\n\n# Sync system files\n.sync/\n*.local\n", env.ReadFile(env.Paths.ConfigsPath(".gitignore")))
}

func TestRun_CreatesMissingGitignore(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v := &testutil.MockVCS{}
	v.On("IsRepository").Return(true)

	s, rec := setupFor(env, v, "", nil)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.UpdatedGitignore)
	assert.Equal(t, "# Sync system files\n.sync/\n*.local\n", env.ReadFile(env.Paths.ConfigsPath(".gitignore")))
	assert.True(t, rec.Contains(output.LevelSuccess, "Created .gitignore"))
}

func TestRun_RequiresRemoteToClone(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	v := &testutil.MockVCS{}
	v.On("IsRepository").Return(false)

	s, _ := setupFor(env, v, "", nil)
	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
	assert.NoDirExists(t, env.Paths.SyncDir())
}

func TestRun_ClonesRemote(t *testing.T) {
	env := testutil.NewGitEnvironment(t)
	require.NoError(t, os.RemoveAll(env.ConfigsDir))

	s, _ := setupFor(env, env.VCS(), env.RemoteDir, nil)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.ClonedRepository)
	assert.False(t, res.UpdatedGitignore)
	assert.True(t, env.VCS().IsRepository())
	assert.Equal(t, "# configs\n", env.ReadFile(env.Paths.ConfigsPath("README.md")))
	assert.Equal(t, testutil.Branch, env.Git("rev-parse", "--abbrev-ref", "HEAD"))
	assert.Equal(t, "origin/"+testutil.Branch, env.Git("rev-parse", "--abbrev-ref", "@{upstream}"))
	// metadata and machine-local files stay out of git
	assert.Equal(t, "?? .marked-files", env.Git("status", "--porcelain"))
}

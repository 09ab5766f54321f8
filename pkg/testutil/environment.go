// pkg/testutil/environment.go
// DEPENDENCIES: git binary for the git-backed variants
// PURPOSE: Orchestrate isolated test environments

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jtele2/csync/pkg/datastore"
	"github.com/jtele2/csync/pkg/filesystem"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/types"
	"github.com/jtele2/csync/pkg/vcs"
)

const (
	// TestUser is the $USER every environment runs as.
	TestUser = "tester"
	// Branch is the sync branch of git-backed environments.
	Branch = "main"
)

// TestEnvironment is one simulated machine: a home directory and a configs
// working copy. Git-backed environments share a bare remote.
type TestEnvironment struct {
	Root       string
	HomeDir    string
	ConfigsDir string
	RemoteDir  string

	FS        types.FS
	Paths     *paths.Paths
	DataStore datastore.DataStore

	t *testing.T
}

// NewTestEnvironment creates a machine without git. The configs directory
// exists but is not a repository.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	root := t.TempDir()

	t.Setenv("USER", TestUser)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg", "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "xdg", "state"))
	t.Setenv("NO_COLOR", "1")

	env := newMachine(t, root, "machine", "")
	t.Setenv("HOME", env.HomeDir)
	if err := os.MkdirAll(env.ConfigsDir, 0755); err != nil {
		t.Fatalf("failed to create configs dir: %v", err)
	}
	return env
}

// NewGitEnvironment creates a bare remote seeded with one commit on Branch
// and clones it as the configs directory of the first machine.
func NewGitEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	RequireGit(t)

	root := t.TempDir()
	t.Setenv("USER", TestUser)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg", "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "xdg", "state"))
	t.Setenv("NO_COLOR", "1")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "csync test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "csync test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	remote := filepath.Join(root, "remote.git")
	GitIn(t, root, "init", "-q", "--bare", "-b", Branch, remote)

	seed := filepath.Join(root, "seed")
	GitIn(t, root, "init", "-q", "-b", Branch, seed)
	writeFile(t, filepath.Join(seed, "README.md"), "# configs\n")
	writeFile(t, filepath.Join(seed, ".gitignore"), "# Sync system files\n.sync/\n*.local\n")
	GitIn(t, seed, "add", "--all", ".")
	GitIn(t, seed, "commit", "-q", "-m", "Initial commit")
	GitIn(t, seed, "push", "-q", remote, Branch+":"+Branch)

	env := newMachine(t, root, "machine", remote)
	t.Setenv("HOME", env.HomeDir)
	return env
}

// NewMachine clones the shared remote as another machine with its own home.
func (env *TestEnvironment) NewMachine(name string) *TestEnvironment {
	env.t.Helper()
	if env.RemoteDir == "" {
		env.t.Fatalf("NewMachine requires a git environment")
	}
	return newMachine(env.t, env.Root, name, env.RemoteDir)
}

func newMachine(t *testing.T, root, name, remote string) *TestEnvironment {
	t.Helper()
	env := &TestEnvironment{
		Root:       root,
		HomeDir:    filepath.Join(root, name, "home"),
		ConfigsDir: filepath.Join(root, name, "home", "configs"),
		RemoteDir:  remote,
		FS:         filesystem.NewOS(),
		t:          t,
	}
	if err := os.MkdirAll(env.HomeDir, 0755); err != nil {
		t.Fatalf("failed to create home: %v", err)
	}
	if remote != "" {
		GitIn(t, root, "clone", "-q", "-b", Branch, remote, env.ConfigsDir)
	}

	p, err := paths.New(paths.Options{
		Home:       env.HomeDir,
		ConfigsDir: env.ConfigsDir,
		Branch:     Branch,
		Root:       filepath.Join(root, name, "sysroot"),
		GOOS:       "linux",
	})
	if err != nil {
		t.Fatalf("failed to create paths: %v", err)
	}
	env.Paths = p
	env.DataStore = datastore.New(env.FS, p, datastore.Identity{User: TestUser, Hostname: name})
	return env
}

// VCS returns a git client for this machine's working copy.
func (env *TestEnvironment) VCS() *vcs.Git {
	return vcs.NewGit(env.ConfigsDir, "origin", Branch)
}

// Git runs git in the configs directory and fails the test on error.
func (env *TestEnvironment) Git(args ...string) string {
	env.t.Helper()
	return GitIn(env.t, env.ConfigsDir, args...)
}

// WriteConfig writes a file relative to the configs directory.
func (env *TestEnvironment) WriteConfig(rel, content string) string {
	env.t.Helper()
	path := filepath.Join(env.ConfigsDir, rel)
	writeFile(env.t, path, content)
	return path
}

// WriteHome writes a file relative to the home directory.
func (env *TestEnvironment) WriteHome(rel, content string) string {
	env.t.Helper()
	path := filepath.Join(env.HomeDir, rel)
	writeFile(env.t, path, content)
	return path
}

// ReadFile returns the content at path, failing the test if unreadable.
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		env.t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// CommitAndPush stages everything in the configs directory, commits and
// pushes to the shared remote.
func (env *TestEnvironment) CommitAndPush(message string) {
	env.t.Helper()
	env.Git("add", "--all", ".")
	env.Git("commit", "-q", "-m", message)
	env.Git("push", "-q", "origin", Branch)
}

// RequireGit skips the test when git is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if !vcs.Available() {
		t.Skip("git is not installed")
	}
}

// GitIn runs git in dir and returns trimmed combined output.
func GitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

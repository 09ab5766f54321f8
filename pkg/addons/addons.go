package addons

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/ui"
)

// OhMyZshDir is the install location checked under home.
const OhMyZshDir = ".oh-my-zsh"

// Deps are the collaborators of an Installer.
type Deps struct {
	Paths    *paths.Paths
	Config   config.AddonsConfig
	Prompter ui.Prompter
	Reporter output.Reporter
	Runner   Runner
	Getenv   func(string) string
}

// Installer sets up shell addons.
type Installer struct {
	deps Deps
}

// New creates an Installer.
func New(deps Deps) *Installer {
	if deps.Reporter == nil {
		deps.Reporter = output.Discard{}
	}
	if deps.Prompter == nil {
		deps.Prompter = ui.DefaultsPrompter{}
	}
	if deps.Runner == nil {
		deps.Runner = ExecRunner{}
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	return &Installer{deps: deps}
}

// Setup runs the plugin script and offers Oh My Zsh. Failures of either
// are reported, not returned; only a cancelled context is an error.
func (i *Installer) Setup(ctx context.Context) error {
	d := i.deps
	d.Reporter.Info("Setting up addons and plugins...")

	i.runPluginScript(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := i.offerOhMyZsh(ctx); err != nil {
		return err
	}

	d.Reporter.Success("Addon setup complete!")
	zshrc := d.Paths.HomePath(".zshrc")
	if _, err := os.Stat(zshrc); err == nil && d.Getenv("ZSH_VERSION") != "" {
		d.Reporter.Success("Please run 'source ~/.zshrc' to reload")
	} else {
		d.Reporter.Info("Restart your shell or run 'source ~/.zshrc' to load changes")
	}
	return nil
}

func (i *Installer) runPluginScript(ctx context.Context) {
	d := i.deps
	logger := logging.GetLogger("addons")
	script := d.Paths.ConfigsPath(d.Config.Script)
	if _, err := os.Stat(script); err != nil {
		d.Reporter.Warn("%s not found", d.Config.Script)
		return
	}

	d.Reporter.Info("Installing Oh My Zsh custom plugins...")
	res, err := d.Runner.Run(ctx, d.Paths.ConfigsDir(), "bash", script)
	switch {
	case err != nil:
		logger.Error().Err(err).Str("script", script).Msg("Plugin script did not run")
		d.Reporter.Error("Failed to run %s: %v", d.Config.Script, err)
	case res.ExitCode != 0:
		logger.Warn().Int("exit", res.ExitCode).Str("stderr", res.Stderr).Msg("Plugin script failed")
		d.Reporter.Warn("Plugin installation had issues: %s", strings.TrimSpace(res.Stderr))
	default:
		d.Reporter.Success("Plugins installed successfully")
	}
}

func (i *Installer) offerOhMyZsh(ctx context.Context) error {
	d := i.deps
	if _, err := os.Stat(d.Paths.HomePath(OhMyZshDir)); err == nil {
		return nil
	}

	install, err := d.Prompter.Confirm("Oh My Zsh not found. Would you like to install it?", false)
	if err != nil || !install {
		return nil
	}

	d.Reporter.Info("Installing Oh My Zsh...")
	res, err := d.Runner.Run(ctx, d.Paths.Home(), "sh", InstallerArgs(d.Config.OhMyZshInstaller)...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	switch {
	case err != nil:
		d.Reporter.Error("Failed to install Oh My Zsh: %v", err)
	case res.ExitCode != 0:
		d.Reporter.Error("Failed to install Oh My Zsh: exit status %d", res.ExitCode)
	default:
		d.Reporter.Success("Oh My Zsh installed")
	}
	return nil
}

// InstallerArgs builds the sh arguments that download the installer and run
// it unattended, the same as the documented
// sh -c "$(curl -fsSL <url>)" "" --unattended.
func InstallerArgs(url string) []string {
	return []string{"-c", fmt.Sprintf(`sh -c "$(curl -fsSL '%s')" "" --unattended`, url)}
}

package csync

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jtele2/csync/cmd/csync/commands/genconfig"
	"github.com/jtele2/csync/internal/version"
	"github.com/jtele2/csync/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	opts := &rootOptions{}
	syncOpts := &syncOptions{}

	rootCmd := &cobra.Command{
		Use:     "csync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgSyncExample,
		Version: version.String(),
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		// No subcommand means sync.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, syncOpts)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	syncOpts.register(rootCmd)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sync",
		Title: "SYNC:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "files",
		Title: "FILES:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "backup",
		Title: "BACKUPS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "config",
		Title: "CONFIGURATION:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newSyncCmd(opts))
	rootCmd.AddCommand(newSetupCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newMarkCmd(opts))
	rootCmd.AddCommand(newUnmarkCmd(opts))
	rootCmd.AddCommand(newListMarkedCmd(opts))
	rootCmd.AddCommand(newBackupCmd(opts))
	rootCmd.AddCommand(newRestoreCmd(opts))
	rootCmd.AddCommand(newListBackupsCmd(opts))
	rootCmd.AddCommand(newSetupAddonsCmd(opts))
	rootCmd.AddCommand(newCreateSymlinksCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())

	installTopics(rootCmd)

	return rootCmd
}

func newGenConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := genconfig.NewCommand()
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		write, _ := cmd.Flags().GetBool("write")
		return genconfig.Run(cmd.OutOrStdout(), genconfig.Options{
			ConfigFile: opts.configFile,
			Write:      write,
		})
	}
	return cmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell: %s", args[0])
		},
	}
}

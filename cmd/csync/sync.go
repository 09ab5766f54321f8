package csync

import (
	"github.com/spf13/cobra"

	"github.com/jtele2/csync/pkg/sync"
)

type syncOptions struct {
	forcePush  bool
	forcePull  bool
	dryRun     bool
	background bool
}

// register adds the sync flags to cmd. Both the root command and sync
// carry them since sync is the default.
func (o *syncOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.forcePush, "force-push", false, MsgFlagForcePush)
	cmd.Flags().BoolVar(&o.forcePull, "force-pull", false, MsgFlagForcePull)
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, MsgFlagDryRun)
	cmd.Flags().BoolVar(&o.background, "background", false, MsgFlagBackground)
	cmd.MarkFlagsMutuallyExclusive("force-push", "force-pull")
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	syncOpts := &syncOptions{}
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		Args:    cobra.NoArgs,
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, syncOpts)
		},
	}
	syncOpts.register(cmd)
	return cmd
}

func runSync(cmd *cobra.Command, opts *rootOptions, syncOpts *syncOptions) error {
	a, err := newApp(cmd, opts, true)
	if err != nil {
		return err
	}
	_, err = a.orchestrator(syncOpts.background).Sync(cmd.Context(), sync.Options{
		ForcePush:  syncOpts.forcePush,
		ForcePull:  syncOpts.forcePull,
		DryRun:     syncOpts.dryRun,
		Background: syncOpts.background,
	})
	return err
}

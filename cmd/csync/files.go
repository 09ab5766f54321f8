package csync

import (
	"github.com/spf13/cobra"

	"github.com/jtele2/csync/pkg/addons"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/setup"
)

func newSetupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "setup",
		Short:   MsgSetupShort,
		Args:    cobra.NoArgs,
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}
			_, err = setup.New(setup.Deps{
				FS:        a.fs,
				Paths:     a.paths,
				VCS:       a.git,
				Store:     a.store,
				Links:     a.links(a.reporter),
				Reporter:  a.reporter,
				RemoteURL: a.cfg.Sync.RemoteURL,
				Out:       a.out,
				Color:     a.color,
			}).Run(cmd.Context())
			return err
		},
	}
}

func newSetupAddonsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "setup-addons",
		Short:   MsgSetupAddonsShort,
		Args:    cobra.NoArgs,
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			return addons.New(addons.Deps{
				Paths:    a.paths,
				Config:   a.cfg.Addons,
				Prompter: a.prompter,
				Reporter: a.reporter,
				Runner:   addons.ExecRunner{Passthrough: true},
			}).Setup(cmd.Context())
		},
	}
}

func newCreateSymlinksCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "create-symlinks",
		Short:   MsgCreateSymlinksShort,
		Args:    cobra.NoArgs,
		GroupID: "config",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			report, err := a.links(a.reporter).ReconcileStandard(force)
			if err != nil {
				return err
			}
			if n := report.Changed(); n > 0 {
				a.reporter.Success(MsgSymlinksChanged, n)
			} else {
				a.reporter.Info(MsgSymlinksUpToDate)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForceLinks)
	return cmd
}

func newMarkCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "mark <path>",
		Short:   MsgMarkShort,
		Long:    MsgMarkLong,
		Args:    cobra.ExactArgs(1),
		GroupID: "files",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			return a.marked(a.reporter).Mark(cmd.Context(), args[0])
		},
	}
}

func newUnmarkCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "unmark <path>",
		Short:   MsgUnmarkShort,
		Args:    cobra.ExactArgs(1),
		GroupID: "files",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			return a.marked(a.reporter).Unmark(cmd.Context(), args[0])
		},
	}
}

func newListMarkedCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "list-marked",
		Short:   MsgListMarkedShort,
		Args:    cobra.NoArgs,
		GroupID: "files",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			f, err := a.format(format)
			if err != nil {
				return err
			}
			entries, err := a.marked(a.reporter).List()
			if err != nil {
				return err
			}
			if f.IsMachine() {
				return output.WriteMachine(a.out, f, entries)
			}
			if len(entries) == 0 {
				a.reporter.Info(MsgNoMarkedFiles)
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				external := "yes"
				if !e.ExternalExists {
					external = "missing"
				}
				rows = append(rows, []string{e.HomePath, string(e.State), external})
			}
			a.reporter.Table(MsgMarkedTitle, []string{"Path", "State", "External copy"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	return cmd
}

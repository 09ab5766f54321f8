package csync

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtele2/csync/pkg/backup"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/ui"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "backup",
		Short:   MsgBackupShort,
		Args:    cobra.NoArgs,
		GroupID: "backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			archive, err := a.backups(a.reporter).Create()
			if err != nil {
				return err
			}
			a.reporter.Success(MsgBackupCreated, archive.Path)
			return nil
		},
	}
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "restore [backup_name]",
		Short:   MsgRestoreShort,
		Long:    MsgRestoreLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			selector := ""
			if len(args) == 1 {
				selector = args[0]
			}
			_, err = a.backups(a.reporter).Restore(selector, chooseBackup(a.prompter))
			return err
		},
	}
}

// chooseBackup offers archives through the prompter.
func chooseBackup(p ui.Prompter) backup.Chooser {
	return func(archives []backup.Archive) (int, error) {
		options := make([]string, len(archives))
		for i, archive := range archives {
			options[i] = describeArchive(archive)
		}
		return p.Select(MsgSelectBackup, options)
	}
}

func describeArchive(archive backup.Archive) string {
	return fmt.Sprintf("%s (%.2f MB, %s)", archive.Name, archive.SizeMB(),
		archive.ModTime.Format("2006-01-02 15:04:05"))
}

func newListBackupsCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "list-backups",
		Short:   MsgListBackupsShort,
		Args:    cobra.NoArgs,
		GroupID: "backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			f, err := a.format(format)
			if err != nil {
				return err
			}
			archives, err := a.backups(a.reporter).List()
			if err != nil {
				return err
			}
			if f.IsMachine() {
				return output.WriteMachine(a.out, f, archives)
			}
			if len(archives) == 0 {
				a.reporter.Info(MsgNoBackups)
				return nil
			}

			rows := make([][]string, 0, len(archives))
			for _, archive := range archives {
				rows = append(rows, []string{
					archive.Name,
					fmt.Sprintf("%.2f MB", archive.SizeMB()),
					archive.ModTime.Format("2006-01-02 15:04:05"),
				})
			}
			a.reporter.Table(MsgBackupsTitle, []string{"Backup", "Size", "Created"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	return cmd
}

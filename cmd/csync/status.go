package csync

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/status"
	"github.com/jtele2/csync/pkg/ui"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Args:    cobra.NoArgs,
		GroupID: "sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}
			f, err := a.format(format)
			if err != nil {
				return err
			}

			report, err := status.New(status.Deps{
				Paths:   a.paths,
				VCS:     a.git,
				Store:   a.store,
				Marked:  a.marked(a.reporter),
				Backups: a.backups(a.reporter),
				Links:   a.links(a.reporter),
			}).Collect(cmd.Context())
			if err != nil {
				return err
			}
			return report.Render(f, a.out, a.reporter)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "auto", MsgFlagFormat)
	return cmd
}

// format parses a --format value, resolving auto against the output.
func (a *app) format(value string) (ui.Format, error) {
	f, err := ui.ParseFormat(value)
	if err != nil {
		return f, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	if file, ok := a.out.(*os.File); ok {
		return f.Resolve(file), nil
	}
	if f == ui.FormatAuto {
		return ui.FormatText, nil
	}
	return f, nil
}

package genconfig

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/errors"
)

// NewCommand creates the gen-config command. The root command sets RunE.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		GroupID: "config",
	}

	cmd.Flags().BoolP("write", "w", false, MsgFlagWrite)

	return cmd
}

// Options for Run.
type Options struct {
	ConfigFile string
	Write      bool
	// Target overrides the file written with Write.
	Target string
}

// Run loads the configuration and prints it, or writes it to the user
// config file. An existing file is never overwritten.
func Run(out io.Writer, opts Options) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: opts.ConfigFile})
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}

	if !opts.Write {
		_, err = out.Write(data)
		return err
	}

	target := opts.Target
	if target == "" {
		target = config.UserFile()
	}
	if _, err := os.Stat(target); err == nil {
		return errors.Newf(errors.ErrInvalidInput, MsgFileExists, target).WithHint(MsgHintExists)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", filepath.Dir(target))
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", target)
	}
	_, _ = fmt.Fprintf(out, MsgWritten, target)
	return nil
}

package csync

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/style"
)

// ExitCode reports err on errOut and returns the process exit code.
// Informational errors such as ALREADY_MARKED are warnings and exit 0.
func ExitCode(err error, errOut io.Writer) int {
	if err == nil {
		return 0
	}
	if errors.IsInformational(err) {
		_, _ = fmt.Fprintln(errOut, style.WarningStyle.Render(informationalMessage(err)))
		return 0
	}
	if stderrors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(errOut, style.WarningStyle.Render(MsgInterrupted))
		return 1
	}

	log.Debug().Err(err).Str("code", string(errors.GetErrorCode(err))).Msg("Command failed")
	_, _ = fmt.Fprintln(errOut, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
	if hint := errors.GetHint(err); hint != "" {
		_, _ = fmt.Fprintln(errOut, style.MutedStyle.Render("Hint: "+hint))
	}
	return 1
}

// informationalMessage drops the code prefix; the message alone reads as
// a warning.
func informationalMessage(err error) string {
	var ce *errors.CsyncError
	if stderrors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

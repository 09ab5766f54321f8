package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/style"
)

// Console writes styled lines for people. Normal narration goes to out and
// errors go to errOut.
type Console struct {
	out    io.Writer
	errOut io.Writer
	color  bool
}

// NewConsole creates a console reporter. With color disabled every style is
// rendered as plain text.
func NewConsole(out, errOut io.Writer, color bool) *Console {
	log := logging.GetLogger("output")
	if !color {
		lipgloss.SetColorProfile(termenv.Ascii)
		pterm.DisableColor()
	}
	log.Debug().Bool("color", color).Msg("Console reporter created")
	return &Console{out: out, errOut: errOut, color: color}
}

func (c *Console) line(w io.Writer, indicator, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", indicator, msg)
}

func (c *Console) Info(format string, args ...interface{}) {
	c.line(c.out, style.InfoIndicator, style.InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Success(format string, args ...interface{}) {
	c.line(c.out, style.SuccessIndicator, style.SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Warn(format string, args ...interface{}) {
	c.line(c.out, style.WarningIndicator, style.WarningStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) Error(format string, args ...interface{}) {
	c.line(c.errOut, style.ErrorIndicator, style.ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func (c *Console) DryRun(format string, args ...interface{}) {
	_, _ = fmt.Fprintln(c.out, style.DryRunStyle.Render("DRY RUN: "+fmt.Sprintf(format, args...)))
}

// Table renders rows with pterm. An empty table prints only its title.
func (c *Console) Table(title string, headers []string, rows [][]string) {
	if title != "" {
		_, _ = fmt.Fprintln(c.out, style.TitleStyle.Render(title))
	}
	if len(rows) == 0 {
		return
	}
	data := pterm.TableData{headers}
	data = append(data, rows...)
	rendered, err := pterm.DefaultTable.
		WithHasHeader(len(headers) > 0).
		WithBoxed(true).
		WithData(data).
		Srender()
	if err != nil {
		// Fall back to tab separated rows
		for _, row := range rows {
			_, _ = fmt.Fprintln(c.out, strings.Join(row, "\t"))
		}
		return
	}
	_, _ = fmt.Fprintln(c.out, rendered)
}

// Panel frames body in a rounded border with title on top.
func (c *Console) Panel(title, body string) {
	content := style.TitleStyle.Render(title) + "\n\n" + body
	_, _ = fmt.Fprintln(c.out, style.PanelStyle.Render(content))
}

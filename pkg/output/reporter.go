package output

// Level classifies a reported line.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelDryRun  Level = "dry-run"
)

// Reporter is the narration sink of csync operations.
type Reporter interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	// DryRun describes a mutation that was skipped.
	DryRun(format string, args ...interface{})
	Table(title string, headers []string, rows [][]string)
	Panel(title, body string)
}

// Quiet drops progress narration (Info, Success, tables and panels) and
// forwards warnings, errors and dry-run notes.
type Quiet struct {
	Reporter
}

// NewQuiet wraps r.
func NewQuiet(r Reporter) *Quiet {
	return &Quiet{Reporter: r}
}

func (q *Quiet) Info(string, ...interface{})        {}
func (q *Quiet) Success(string, ...interface{})     {}
func (q *Quiet) Table(string, []string, [][]string) {}
func (q *Quiet) Panel(string, string)               {}

// Discard reports nothing.
type Discard struct{}

func (Discard) Info(string, ...interface{})        {}
func (Discard) Success(string, ...interface{})     {}
func (Discard) Warn(string, ...interface{})        {}
func (Discard) Error(string, ...interface{})       {}
func (Discard) DryRun(string, ...interface{})      {}
func (Discard) Table(string, []string, [][]string) {}
func (Discard) Panel(string, string)               {}

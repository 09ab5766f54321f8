package output

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one recorded line.
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps everything reported, for tests.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
	Tables  [][][]string
	Panels  []string
}

var _ Reporter = (*Recorder)(nil)

func (r *Recorder) add(level Level, format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (r *Recorder) Info(format string, args ...interface{})    { r.add(LevelInfo, format, args...) }
func (r *Recorder) Success(format string, args ...interface{}) { r.add(LevelSuccess, format, args...) }
func (r *Recorder) Warn(format string, args ...interface{})    { r.add(LevelWarn, format, args...) }
func (r *Recorder) Error(format string, args ...interface{})   { r.add(LevelError, format, args...) }
func (r *Recorder) DryRun(format string, args ...interface{})  { r.add(LevelDryRun, format, args...) }

func (r *Recorder) Table(_ string, _ []string, rows [][]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Tables = append(r.Tables, rows)
}

func (r *Recorder) Panel(title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Panels = append(r.Panels, title+"\n"+body)
}

// Messages returns the messages recorded at level.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message at level contains substr.
func (r *Recorder) Contains(level Level, substr string) bool {
	for _, m := range r.Messages(level) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

package ui

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
)

// Prompter asks the user questions.
type Prompter interface {
	// Confirm asks a yes/no question. def is the answer on plain Enter.
	Confirm(question string, def bool) (bool, error)
	// Select lets the user pick one option and returns its index.
	Select(title string, options []string) (int, error)
}

// NewPrompter returns an interactive prompter when stdin is a terminal and a
// non-interactive one that takes the defaults otherwise.
func NewPrompter() Prompter {
	if IsTerminal(os.Stdin) {
		return ptermPrompter{}
	}
	return DefaultsPrompter{}
}

type ptermPrompter struct{}

func (ptermPrompter) Confirm(question string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(question)
}

func (ptermPrompter) Select(title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("nothing to select from")
	}
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultOption(options[0]).
		Show(title)
	if err != nil {
		return -1, err
	}
	for i, opt := range options {
		if opt == choice {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown selection %q", choice)
}

// DefaultsPrompter answers every question with its default; Select picks the
// first option.
type DefaultsPrompter struct{}

func (DefaultsPrompter) Confirm(_ string, def bool) (bool, error) { return def, nil }

func (DefaultsPrompter) Select(_ string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("nothing to select from")
	}
	return 0, nil
}

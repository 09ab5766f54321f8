// Package symlinks keeps the standard config files of the home directory
// linked into the configs repository.
package symlinks

import (
	"os"
	"path/filepath"

	"github.com/jtele2/csync/pkg/config"
	"github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/filesystem"
	"github.com/jtele2/csync/pkg/logging"
	"github.com/jtele2/csync/pkg/output"
	"github.com/jtele2/csync/pkg/paths"
	"github.com/jtele2/csync/pkg/types"
)

// Action is what reconciliation did with one pair.
type Action string

const (
	ActionLinked        Action = "linked"
	ActionReplaced      Action = "replaced"
	ActionAlreadyLinked Action = "already-linked"
	ActionSkippedExists Action = "skipped-exists"
	ActionSourceMissing Action = "source-missing"
)

// Pair is one standard link with absolute paths.
type Pair struct {
	Source string
	Target string
}

// PairStatus tells whether a pair's target currently resolves to its source.
type PairStatus struct {
	Pair
	Linked bool
}

// Outcome records the action taken for a pair.
type Outcome struct {
	Pair
	Action Action
}

// Report summarizes a reconciliation.
type Report struct {
	Outcomes []Outcome
	// ZshrcLinked is set when ~/.zshrc was created or replaced.
	ZshrcLinked bool
}

// Changed counts links created or replaced.
func (r Report) Changed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == ActionLinked || o.Action == ActionReplaced {
			n++
		}
	}
	return n
}

// Reconciler owns the standard link table.
type Reconciler struct {
	fs       types.FS
	paths    *paths.Paths
	links    []config.LinkConfig
	reporter output.Reporter
	getenv   func(string) string
}

// New creates a Reconciler for the configured links.
func New(fs types.FS, p *paths.Paths, links []config.LinkConfig, reporter output.Reporter) *Reconciler {
	return &Reconciler{
		fs:       fs,
		paths:    p,
		links:    links,
		reporter: reporter,
		getenv:   os.Getenv,
	}
}

// WithGetenv replaces the environment lookup used for the shell hint.
func (r *Reconciler) WithGetenv(getenv func(string) string) *Reconciler {
	r.getenv = getenv
	return r
}

func (r *Reconciler) pairs() []Pair {
	out := make([]Pair, 0, len(r.links))
	for _, l := range r.links {
		out = append(out, Pair{
			Source: r.paths.ConfigsPath(l.Source),
			Target: r.paths.HomePath(l.Target),
		})
	}
	return out
}

// ReconcileStandard links every pair whose source exists. Existing targets
// are left alone unless force is set. Running it twice changes nothing the
// second time.
func (r *Reconciler) ReconcileStandard(force bool) (Report, error) {
	logger := logging.GetLogger("symlinks")
	var report Report

	r.reporter.Info("Updating config symlinks...")

	for _, pair := range r.pairs() {
		source, err := filesystem.Inspect(r.fs, pair.Source)
		if err != nil {
			return report, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", pair.Source)
		}
		if !source.Exists() {
			logger.Debug().Str("source", pair.Source).Msg("Source missing, skipping")
			report.Outcomes = append(report.Outcomes, Outcome{Pair: pair, Action: ActionSourceMissing})
			continue
		}

		if filesystem.ResolvesTo(r.fs, pair.Target, pair.Source) {
			report.Outcomes = append(report.Outcomes, Outcome{Pair: pair, Action: ActionAlreadyLinked})
			continue
		}

		target, err := filesystem.Inspect(r.fs, pair.Target)
		if err != nil {
			return report, errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", pair.Target)
		}

		action := ActionLinked
		if target.Exists() {
			if !force {
				r.reporter.Warn("Skipping: %s (already exists)", pair.Target)
				report.Outcomes = append(report.Outcomes, Outcome{Pair: pair, Action: ActionSkippedExists})
				continue
			}
			r.reporter.Warn("Replacing: %s", pair.Target)
			if err := target.Remove(r.fs); err != nil {
				return report, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to remove %s", pair.Target)
			}
			action = ActionReplaced
		}

		if err := r.fs.MkdirAll(filepath.Dir(pair.Target), 0755); err != nil {
			return report, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create parent of %s", pair.Target)
		}
		if err := r.fs.Symlink(pair.Source, pair.Target); err != nil {
			return report, errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to link %s", pair.Target)
		}
		r.reporter.Success("Linked: %s → %s", pair.Target, pair.Source)
		logger.Info().Str("target", pair.Target).Str("source", pair.Source).Msg("Linked")

		report.Outcomes = append(report.Outcomes, Outcome{Pair: pair, Action: action})
		if filepath.Base(pair.Target) == ".zshrc" {
			report.ZshrcLinked = true
		}
	}

	if report.ZshrcLinked && r.getenv("ZSH_VERSION") != "" {
		r.reporter.Success("Please run 'source ~/.zshrc' to reload")
	}
	return report, nil
}

// Pairs reports each pair and whether its target resolves to its source.
func (r *Reconciler) Pairs() []PairStatus {
	var out []PairStatus
	for _, pair := range r.pairs() {
		out = append(out, PairStatus{
			Pair:   pair,
			Linked: filesystem.ResolvesTo(r.fs, pair.Target, pair.Source),
		})
	}
	return out
}

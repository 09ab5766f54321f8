package metrics

import (
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/jtele2/csync/pkg/errors"
)

const namespace = "csync"

// SyncOutcome is what one sync run reports.
type SyncOutcome struct {
	Finished    time.Time
	Duration    time.Duration
	Success     bool
	MarkedFiles int
	Backups     int
}

// TextfileExporter writes sync gauges to a textfile collector path.
type TextfileExporter struct {
	path     string
	registry *prom.Registry

	lastSync    prom.Gauge
	success     prom.Gauge
	duration    prom.Gauge
	markedFiles prom.Gauge
	backups     prom.Gauge
}

// NewTextfileExporter returns nil when path is empty; a nil exporter's
// methods are no-ops.
func NewTextfileExporter(path string) *TextfileExporter {
	if path == "" {
		return nil
	}
	e := &TextfileExporter{path: path, registry: prom.NewRegistry()}
	e.lastSync = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_sync_timestamp_seconds",
		Help:      "Unix time the last sync finished",
	})
	e.success = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_sync_success",
		Help:      "1 if the last sync succeeded, 0 otherwise",
	})
	e.duration = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Wall time of the last sync",
	})
	e.markedFiles = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "marked_files",
		Help:      "Number of marked external files",
	})
	e.backups = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "backups",
		Help:      "Number of backup archives kept",
	})
	e.registry.MustRegister(e.lastSync, e.success, e.duration, e.markedFiles, e.backups)
	return e
}

// Path returns the textfile location.
func (e *TextfileExporter) Path() string {
	if e == nil {
		return ""
	}
	return e.path
}

// Registry exposes the underlying registry for inspection.
func (e *TextfileExporter) Registry() *prom.Registry {
	if e == nil {
		return nil
	}
	return e.registry
}

// Export records outcome and rewrites the textfile.
func (e *TextfileExporter) Export(outcome SyncOutcome) error {
	if e == nil {
		return nil
	}
	e.lastSync.Set(float64(outcome.Finished.Unix()))
	if outcome.Success {
		e.success.Set(1)
	} else {
		e.success.Set(0)
	}
	e.duration.Set(outcome.Duration.Seconds())
	e.markedFiles.Set(float64(outcome.MarkedFiles))
	e.backups.Set(float64(outcome.Backups))

	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", filepath.Dir(e.path))
	}
	if err := prom.WriteToTextfile(e.path, e.registry); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write metrics to %s", e.path)
	}
	return nil
}

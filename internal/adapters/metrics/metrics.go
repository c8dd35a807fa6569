// Package metrics exports step results for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/debprep/internal/domain/provision"
)

// FileName is the textfile written into the collector directory.
const FileName = "debprep.prom"

var outcomes = []provision.Outcome{
	provision.OutcomeAlreadySatisfied,
	provision.OutcomeSucceeded,
	provision.OutcomeFailedAfterRetries,
	provision.OutcomeFatalError,
}

// Recorder collects step results into a private registry.
type Recorder struct {
	dir      string
	registry *prometheus.Registry
	outcome  *prometheus.GaugeVec
	attempts *prometheus.GaugeVec
	duration *prometheus.GaugeVec
	lastRun  prometheus.Gauge
	info     *prometheus.GaugeVec
	now      func() time.Time
}

// NewRecorder creates a Recorder that writes into dir.
func NewRecorder(dir, runID string) *Recorder {
	r := &Recorder{
		dir:      dir,
		registry: prometheus.NewRegistry(),
		outcome: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "debprep_step_outcome",
			Help: "1 for the outcome of the last run of each step, 0 for the others.",
		}, []string{"step", "outcome"}),
		attempts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "debprep_step_attempts",
			Help: "Mutation attempts used by the last run of each step.",
		}, []string{"step"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "debprep_step_duration_seconds",
			Help: "Wall time of the last run of each step.",
		}, []string{"step"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "debprep_last_run_timestamp_seconds",
			Help: "Unix time the metrics were last written.",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "debprep_run_info",
			Help: "Identifier of the run that wrote these metrics.",
		}, []string{"run_id"}),
		now: time.Now,
	}
	r.registry.MustRegister(r.outcome, r.attempts, r.duration, r.lastRun, r.info)
	r.info.WithLabelValues(runID).Set(1)
	return r
}

// Observe records result.
func (r *Recorder) Observe(result provision.StepResult) {
	step := result.StepID().String()
	for _, o := range outcomes {
		v := 0.0
		if o == result.Outcome() {
			v = 1
		}
		r.outcome.WithLabelValues(step, o.String()).Set(v)
	}
	r.attempts.WithLabelValues(step).Set(float64(result.Attempts()))
	r.duration.WithLabelValues(step).Set(result.Duration().Seconds())
}

// ObserveBatch records every result of a batch.
func (r *Recorder) ObserveBatch(batch provision.BatchResult) {
	for _, res := range batch.Results() {
		r.Observe(res)
	}
}

// Path returns the textfile location.
func (r *Recorder) Path() string {
	return filepath.Join(r.dir, FileName)
}

// Flush writes the textfile atomically.
func (r *Recorder) Flush() error {
	r.lastRun.Set(float64(r.now().Unix()))
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create textfile directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(r.Path(), r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Package metrics counts pipeline outcomes with Prometheus collectors on a
// private registry. A CLI run has no scrape endpoint, so the registry is
// written once in the textfile collector format when the run ends.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultNamespace = "airtable_automation"

// Outcome labels for processed records.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Option applies a configuration option to the Recorder.
type Option func(*Recorder)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// Recorder holds the collectors. A nil *Recorder records nothing.
type Recorder struct {
	namespace string
	registry  *prometheus.Registry

	records      *prometheus.CounterVec
	generations  *prometheus.CounterVec
	runDuration  *prometheus.GaugeVec
	runTimestamp *prometheus.GaugeVec
}

func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: defaultNamespace,
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.registry)

	r.records = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "records_total",
		Help:      "Applicant records handled by an operation, by outcome",
	}, []string{"operation", "outcome"})

	r.generations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "generation_attempts_total",
		Help:      "Text generation attempts, by provider and outcome",
	}, []string{"provider", "outcome"})

	r.runDuration = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run of an operation",
	}, []string{"operation"})

	r.runTimestamp = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "run_finished_timestamp_seconds",
		Help:      "Unix time the last run of an operation finished",
	}, []string{"operation"})

	return r
}

// Record counts one applicant with the given outcome.
func (r *Recorder) Record(operation, outcome string) {
	if r == nil {
		return
	}
	r.records.WithLabelValues(operation, outcome).Inc()
}

// Generation counts one text generation attempt.
func (r *Recorder) Generation(provider string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSucceeded
	if err != nil {
		outcome = OutcomeFailed
	}
	r.generations.WithLabelValues(provider, outcome).Inc()
}

// RunFinished stores the duration and completion time of an operation run.
func (r *Recorder) RunFinished(operation string, took time.Duration, at time.Time) {
	if r == nil {
		return
	}
	r.runDuration.WithLabelValues(operation).Set(took.Seconds())
	r.runTimestamp.WithLabelValues(operation).Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteToTextfile writes all metrics to path, replacing it atomically.
func (r *Recorder) WriteToTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

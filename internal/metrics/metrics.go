// Package metrics exposes prometheus collectors for analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"corromics/domain/core"
	apperrors "corromics/internal/errors"
)

const namespace = "corromics"

// Recorder owns a private registry so tests and multiple servers never collide
// on the default one. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry
	analyses *prometheus.CounterVec
	pairs    *prometheus.CounterVec
	invalid  *prometheus.CounterVec
	stages   *prometheus.HistogramVec
	dropped  prometheus.Counter
}

// NewRecorder registers every collector, plus the Go and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analyses finished, by outcome code.",
		}, []string{"outcome"}),
		pairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correlation_pairs_total",
			Help:      "Correlation records computed, by run kind.",
		}, []string{"run"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correlation_invalid_pairs_total",
			Help:      "Records marked invalid because a feature had zero variance.",
		}, []string{"run"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock time of each analysis stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zero_rows_dropped_total",
			Help:      "Genomic features removed because they were zero in every sample.",
		}),
	}
	r.registry.MustRegister(
		r.analyses, r.pairs, r.invalid, r.stages, r.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveStage records how long a named stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveRun records the size of one correlation run.
func (r *Recorder) ObserveRun(kind core.RunKind, pairs, invalid int) {
	if r == nil {
		return
	}
	r.pairs.WithLabelValues(string(kind)).Add(float64(pairs))
	r.invalid.WithLabelValues(string(kind)).Add(float64(invalid))
}

// ObserveDropped counts removed all-zero genomic rows.
func (r *Recorder) ObserveDropped(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.dropped.Add(float64(n))
}

// AnalysisFinished counts an analysis under "ok" or the error's code.
func (r *Recorder) AnalysisFinished(err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperrors.GetCode(err)
	}
	r.analyses.WithLabelValues(outcome).Inc()
}

// Package metrics exposes gate decisions as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tkingovr/logfilter/api"
)

// Recorder counts decisions and their evaluation latency. It owns a private
// registry so several recorders can coexist in one process.
type Recorder struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logfilter_decisions_total",
			Help: "Events gated by a filter chain, by final result and deciding filter.",
		}, []string{"chain", "result", "decided_by"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logfilter_decision_duration_seconds",
			Help:    "Time spent evaluating a filter chain for one event.",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"chain"}),
	}
	r.registry.MustRegister(r.decisions, r.duration)
	return r
}

// Observe records one decision.
func (r *Recorder) Observe(chain string, result api.Result, decidedBy string, took time.Duration) {
	r.decisions.WithLabelValues(chain, string(result), decidedBy).Inc()
	r.duration.WithLabelValues(chain).Observe(took.Seconds())
}

// Registry returns the registry the recorder's collectors live in.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the recorder's metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Package metrics exposes the runtime's Prometheus instrumentation:
// invocation counts, durations, and error classification counts, the
// way an always-on process instruments its main loop regardless of
// whether a scrape endpoint is ever wired up. Grounded on the broader
// example pack's use of github.com/prometheus/client_golang for
// process-level counters/histograms; this repo's own teacher doesn't
// instrument its script executor, so the shape here follows the
// library's own idiomatic constructors rather than a specific teacher
// file.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Invocation holds the counters and histograms the invocation loop
// updates once per iteration.
type Invocation struct {
	Registry *prometheus.Registry

	Total        *prometheus.CounterVec
	DurationSecs prometheus.Histogram
}

// NewInvocation registers a fresh set of invocation metrics on a new
// registry, safe to call once per process.
func NewInvocation() *Invocation {
	reg := prometheus.NewRegistry()
	m := &Invocation{
		Registry: reg,
		Total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llrt",
			Subsystem: "invocation",
			Name:      "total",
			Help:      "Number of invocations processed, labelled by outcome.",
		}, []string{"outcome"}),
		DurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "llrt",
			Subsystem: "invocation",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of one invocation, from next-event to response POST.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Total, m.DurationSecs)
	return m
}

// ObserveSuccess records a successful invocation's duration.
func (m *Invocation) ObserveSuccess(seconds float64) {
	m.Total.WithLabelValues("success").Inc()
	m.DurationSecs.Observe(seconds)
}

// ObserveError records a failed invocation's duration.
func (m *Invocation) ObserveError(seconds float64) {
	m.Total.WithLabelValues("error").Inc()
	m.DurationSecs.Observe(seconds)
}

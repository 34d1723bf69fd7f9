package tracker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK          = "ok"
	outcomeCached      = "cached"
	outcomeUnavailable = "unavailable"
	outcomeMalformed   = "malformed"
)

// Metrics tracks tracker lookups. A nil *Metrics records nothing.
type Metrics struct {
	lookups  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the lookup metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "octanecore",
			Name:      "stats_lookups_total",
			Help:      "Tracker stats lookups by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "octanecore",
			Name:      "stats_lookup_duration_seconds",
			Help:      "Latency of live tracker lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.lookups, m.duration)
	return m
}

func (m *Metrics) observeLookup(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	if outcome != outcomeCached {
		m.duration.Observe(elapsed.Seconds())
	}
}

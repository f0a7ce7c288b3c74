// Package metrics defines the Prometheus instrumentation of the editor core:
// save outcomes and latency, index rebuild latency, and the current indexed
// port count.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors. A nil *Metrics is a valid no-op receiver so
// library consumers can skip instrumentation entirely.
type Metrics struct {
	SavesTotal       *prometheus.CounterVec
	SaveDuration     prometheus.Histogram
	IndexRebuilds    prometheus.Counter
	IndexRebuildTime prometheus.Histogram
	IndexedPorts     prometheus.Gauge
}

// New creates and registers the collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_saves_total",
				Help: "Total number of workflow save attempts by outcome.",
			},
			[]string{"outcome"},
		),
		SaveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "lattice_save_duration_seconds",
				Help: "Duration of workflow persistence calls.",
			},
		),
		IndexRebuilds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lattice_index_rebuilds_total",
				Help: "Total number of spatial index rebuilds.",
			},
		),
		IndexRebuildTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lattice_index_rebuild_seconds",
				Help:    "Duration of spatial index rebuilds.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
		),
		IndexedPorts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "lattice_indexed_ports",
				Help: "Number of ports currently held by the spatial index.",
			},
		),
	}
	reg.MustRegister(m.SavesTotal, m.SaveDuration, m.IndexRebuilds, m.IndexRebuildTime, m.IndexedPorts)
	return m
}

// ObserveSave records one save attempt.
func (m *Metrics) ObserveSave(seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.SavesTotal.WithLabelValues(outcome).Inc()
	m.SaveDuration.Observe(seconds)
}

// ObserveRebuild records one index rebuild.
func (m *Metrics) ObserveRebuild(seconds float64, ports int) {
	if m == nil {
		return
	}
	m.IndexRebuilds.Inc()
	m.IndexRebuildTime.Observe(seconds)
	m.IndexedPorts.Set(float64(ports))
}

package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the workflow.
type Metrics struct {
	Registry           *prometheus.Registry
	PartsTotal         *prometheus.CounterVec
	StageFailuresTotal *prometheus.CounterVec
	PartDuration       prometheus.Histogram
	NavigationRetries  prometheus.Counter
	LeadTimeEntries    prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	parts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtime_parts_total",
			Help: "Parts processed, by outcome (in_stock, lead_time, failed).",
		},
		[]string{"outcome"},
	)
	stageFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtime_stage_failures_total",
			Help: "Per-part workflow failures by stage.",
		},
		[]string{"stage"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadtime_part_duration_seconds",
			Help:    "Wall time of one part's workflow.",
			Buckets: []float64{5, 10, 20, 30, 60, 90, 120, 180, 300},
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leadtime_navigation_retries_total",
			Help: "Search navigation attempts beyond the first.",
		},
	)
	entries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "leadtime_entries_total",
			Help: "Lead-time rows extracted.",
		},
	)

	registry.MustRegister(parts, stageFailures, duration, retries, entries)

	return &Metrics{
		Registry:           registry,
		PartsTotal:         parts,
		StageFailuresTotal: stageFailures,
		PartDuration:       duration,
		NavigationRetries:  retries,
		LeadTimeEntries:    entries,
	}
}

func (m *Metrics) IncPart(outcome string) {
	if m == nil {
		return
	}
	m.PartsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncStageFailure(stage Stage) {
	if m == nil {
		return
	}
	m.StageFailuresTotal.WithLabelValues(string(stage)).Inc()
}

func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.PartDuration.Observe(d.Seconds())
}

func (m *Metrics) AddRetries(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.NavigationRetries.Add(float64(n))
}

func (m *Metrics) AddEntries(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.LeadTimeEntries.Add(float64(n))
}

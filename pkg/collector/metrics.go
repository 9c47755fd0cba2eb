package collector

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/newtron-network/newtscrape/pkg/model"
	"github.com/newtron-network/newtscrape/pkg/parser"
	"github.com/newtron-network/newtscrape/pkg/validate"
)

const namespace = "newtscrape"

// Pass outcomes.
const (
	outcomeResult   = "result"
	outcomeNoResult = "no_result"
)

// Metrics records collection passes on a private registry. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry
	passes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entries  *prometheus.GaugeVec
	rejected *prometheus.CounterVec
	dropped  *prometheus.CounterVec
}

// NewMetrics creates and registers the collector metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Collection passes by kind, IP version, source and outcome.",
		}, []string{"kind", "version", "source", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall-clock time of one collection pass.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"kind", "source"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Validated entries returned by the last pass.",
		}, []string{"kind", "version", "device"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_entries_total",
			Help:      "Parsed entries rejected during validation, by reason.",
		}, []string{"kind", "reason"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_lines_total",
			Help:      "Command output lines that did not parse.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.passes, m.duration, m.entries, m.rejected, m.dropped)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func versionLabel(version int) string {
	if version == 0 {
		return ""
	}
	return strconv.Itoa(version)
}

func (m *Metrics) pass(kind model.Kind, version int, source model.Source, dev model.Device, n int, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := outcomeResult
	if source == "" {
		outcome = outcomeNoResult
		source = "none"
	}
	m.passes.WithLabelValues(string(kind), versionLabel(version), string(source), outcome).Inc()
	m.duration.WithLabelValues(string(kind), string(source)).Observe(elapsed.Seconds())
	if outcome == outcomeResult {
		m.entries.WithLabelValues(string(kind), versionLabel(version), strconv.Itoa(dev.ID)).Set(float64(n))
	}
}

func (m *Metrics) report(kind model.Kind, r *validate.Report) {
	if m == nil || r == nil {
		return
	}
	for reason, n := range r.Rejected {
		m.rejected.WithLabelValues(string(kind), string(reason)).Add(float64(n))
	}
}

func (m *Metrics) parsed(kind model.Kind, st parser.Stats) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(string(kind)).Add(float64(st.Dropped))
}

package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const metricsNamespace = "kiln"

// PromMetrics implements ports.Metrics with a private Prometheus registry.
// Flush writes the registry in text exposition format so node_exporter's
// textfile collector can pick up CI runs.
type PromMetrics struct {
	registry *prometheus.Registry
	path     string

	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	packages      *prometheus.CounterVec
	testsSkipped  prometheus.Counter
}

var _ ports.Metrics = (*PromMetrics)(nil)

// NewPromMetrics creates the collectors. An empty path makes Flush a no-op.
func NewPromMetrics(path string) *PromMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PromMetrics{
		registry: reg,
		path:     path,
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of flow stages.",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"flow", "stage"}),
		stageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stage_failures_total",
			Help:      "Flow stages that returned an error.",
		}, []string{"flow", "stage"}),
		packages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "packages_created_total",
			Help:      "Packages added to the local cache.",
		}, []string{"kind"}),
		testsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tests_skipped_total",
			Help:      "Test stages skipped because the host cannot run the binaries.",
		}),
	}
}

// Registry exposes the underlying registry for inspection.
func (m *PromMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records a stage duration and counts failures.
func (m *PromMetrics) ObserveStage(flow, stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(flow, stage).Observe(d.Seconds())
	if err != nil {
		m.stageFailures.WithLabelValues(flow, stage).Inc()
	}
}

// PackageCreated counts a new cache entry.
func (m *PromMetrics) PackageCreated(kind string) {
	m.packages.WithLabelValues(kind).Inc()
}

// TestSkipped counts a skipped test stage.
func (m *PromMetrics) TestSkipped() {
	m.testsSkipped.Inc()
}

// Flush writes the registry to the configured textfile.
func (m *PromMetrics) Flush() error {
	if m.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics textfile"), "path", m.path)
	}
	return nil
}

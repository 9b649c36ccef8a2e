package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "city_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the risk monitor.
type Metrics struct {
	ReadingsCollected prometheus.Counter
	RefreshErrors     prometheus.Counter
	MonitorRunning    prometheus.Gauge

	// Refresh cycle metrics.
	RefreshDuration prometheus.Histogram
	KnownIndicators *prometheus.GaugeVec   // labels: city
	BandChanges     *prometheus.CounterVec // labels: indicator, level
	PublishErrors   prometheus.Counter
	PublishEnabled  prometheus.Gauge

	// Upstream data source metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={weather,air,fire}, outcome={success,error}
	UpstreamCache    *prometheus.CounterVec   // labels: source, result={hit,miss}
	UpstreamDuration *prometheus.HistogramVec // labels: source
}

// NewMetrics creates and registers all monitor metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReadingsCollected,
		m.RefreshErrors,
		m.MonitorRunning,
		m.RefreshDuration,
		m.KnownIndicators,
		m.BandChanges,
		m.PublishErrors,
		m.PublishEnabled,
		m.UpstreamRequests,
		m.UpstreamCache,
		m.UpstreamDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_collected_total",
			Help:      "Total city readings collected from upstream sources.",
		}),
		RefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Total city refreshes that failed outright.",
		}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_running",
			Help:      "1 when the monitor loop is active, 0 when shut down.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete collect-classify-stabilize cycle for one city.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		KnownIndicators: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "known_indicators",
			Help:      "Committed indicators with a known level, per city.",
		}, []string{"city"}),
		BandChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "band_changes_total",
			Help:      "Committed band changes by indicator and new level.",
		}, []string{"indicator", "level"}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Band change batches that failed to publish.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_enabled",
			Help:      "1 when band changes are published to Kafka, 0 otherwise.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_cache_total",
			Help:      "Upstream response cache lookups by source and result.",
		}, []string{"source", "result"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
	}
}

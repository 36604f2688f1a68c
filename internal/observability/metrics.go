package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// collection and assessment cycle.
type Metrics struct {
	CyclesTotal      prometheus.Counter
	CycleDuration    prometheus.Histogram
	CycleRunning     prometheus.Gauge
	SubjectsAssessed prometheus.Counter

	// Collection metrics.
	Fetches       *prometheus.CounterVec   // labels: domain, outcome={ok,defaulted}
	FetchDuration *prometheus.HistogramVec // labels: domain

	// Sink metrics.
	RecordsPublished  prometheus.Counter
	PublishErrors     prometheus.Counter
	StoreErrors       prometheus.Counter
	ActiveDisruptions prometheus.Gauge

	// Latest overall score per subject, for dashboards.
	OverallRisk *prometheus.GaugeVec // labels: subject, category
}

// NewMetrics creates and registers all cycle metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.CycleRunning,
		m.SubjectsAssessed,
		m.Fetches,
		m.FetchDuration,
		m.RecordsPublished,
		m.PublishErrors,
		m.StoreErrors,
		m.ActiveDisruptions,
		m.OverallRisk,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_risk",
			Name:      "cycles_total",
			Help:      "Total completed collection cycles.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supply_risk",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete collect-score-persist cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CycleRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supply_risk",
			Name:      "cycle_running",
			Help:      "1 while a collection cycle is in progress.",
		}),
		SubjectsAssessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_risk",
			Name:      "subjects_assessed_total",
			Help:      "Total per-subject assessments produced.",
		}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supply_risk",
			Name:      "fetches_total",
			Help:      "Upstream fetches by domain and outcome.",
		}, []string{"domain", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "supply_risk",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration by domain.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"domain"}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_risk",
			Name:      "records_published_total",
			Help:      "Assessment records published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_risk",
			Name:      "publish_errors_total",
			Help:      "Failed publishes to the sink topic.",
		}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "supply_risk",
			Name:      "store_errors_total",
			Help:      "Failed writes to the assessment store.",
		}),
		ActiveDisruptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "supply_risk",
			Name:      "active_disruptions",
			Help:      "Currently open disruption events.",
		}),
		OverallRisk: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "supply_risk",
			Name:      "overall_risk",
			Help:      "Latest overall risk score by subject and label.",
		}, []string{"subject", "category"}),
	}
}

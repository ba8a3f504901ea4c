package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the SNOTEL pipeline.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec // labels: outcome={success,error}
	StageErrors     *prometheus.CounterVec // labels: stage={fetch_directory,extract,select,fetch_report,normalize,load}
	RunDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge
	LastSuccess     prometheus.Gauge

	RowsNormalized       prometheus.Counter
	ObservationsProduced prometheus.Counter

	// Upstream fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: target={directory,report}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: target={directory,report}
	FetchCache    *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.RunsTotal,
		m.StageErrors,
		m.RunDuration,
		m.PipelineRunning,
		m.LastSuccess,
		m.RowsNormalized,
		m.ObservationsProduced,
		m.FetchRequests,
		m.FetchDuration,
		m.FetchCache,
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
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snotel_etl",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snotel_etl",
			Name:      "stage_errors_total",
			Help:      "Pipeline failures by the stage that raised them.",
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "snotel_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete directory-to-sink run.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snotel_etl",
			Name:      "pipeline_running",
			Help:      "1 when the scheduled pipeline is active, 0 when shut down.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "snotel_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		RowsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_etl",
			Name:      "rows_normalized_total",
			Help:      "Total report rows normalized to the canonical schema.",
		}),
		ObservationsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "snotel_etl",
			Name:      "observations_produced_total",
			Help:      "Total typed observations handed to the sinks.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snotel_etl",
			Name:      "fetch_requests_total",
			Help:      "Upstream fetches by target and outcome.",
		}, []string{"target", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "snotel_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"target"}),
		FetchCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "snotel_etl",
			Name:      "fetch_cache_total",
			Help:      "Fetch cache lookups by result.",
		}, []string{"result"}),
	}
}

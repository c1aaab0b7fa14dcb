package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms shared by the
// batch pipelines. Pipelines are one-shot processes, so these are mostly
// useful through the testutil assertions and any push-based collection a
// driver sets up.
type Metrics struct {
	RecordsRead    *prometheus.CounterVec // labels: pipeline
	RecordsWritten *prometheus.CounterVec // labels: pipeline
	RunsCompleted  *prometheus.CounterVec // labels: pipeline, outcome={ok,error}

	DuplicatesDropped prometheus.Counter
	NullKeyCollapsed  prometheus.Counter
	CRSMismatches     prometheus.Counter
	NullDates         *prometheus.CounterVec // labels: pipeline

	MatchesByTier *prometheus.CounterVec // labels: tier={exact,windowed,none}

	SamplerAttempts prometheus.Counter
	SamplerAccepted prometheus.Counter

	BatchFiles *prometheus.CounterVec // labels: outcome={ok,error}

	RunDuration *prometheus.HistogramVec // labels: pipeline
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "records_read_total",
			Help:      "Input records read, per pipeline.",
		}, []string{"pipeline"}),
		RecordsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "records_written_total",
			Help:      "Output records written, per pipeline.",
		}, []string{"pipeline"}),
		RunsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "runs_completed_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"pipeline", "outcome"}),
		DuplicatesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "duplicates_dropped_total",
			Help:      "Records removed by the deduplicating merge.",
		}),
		NullKeyCollapsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "null_key_collapsed_total",
			Help:      "Records dropped solely because their dedup key fields were null.",
		}),
		CRSMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "crs_mismatches_total",
			Help:      "Input layers whose CRS differed from the expected code.",
		}),
		NullDates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "null_dates_total",
			Help:      "Rows whose date column failed to parse, per pipeline.",
		}, []string{"pipeline"}),
		MatchesByTier: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "matches_total",
			Help:      "Hotspot match outcomes by tier.",
		}, []string{"tier"}),
		SamplerAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "sampler_attempts_total",
			Help:      "Candidate points drawn by the rejection sampler.",
		}),
		SamplerAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "sampler_accepted_total",
			Help:      "Points accepted into the eligible region.",
		}),
		BatchFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hotspot_etl",
			Name:      "batch_files_total",
			Help:      "Files processed by batch walkers, by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hotspot_etl",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a complete pipeline run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}, []string{"pipeline"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsRead,
		m.RecordsWritten,
		m.RunsCompleted,
		m.DuplicatesDropped,
		m.NullKeyCollapsed,
		m.CRSMismatches,
		m.NullDates,
		m.MatchesByTier,
		m.SamplerAttempts,
		m.SamplerAccepted,
		m.BatchFiles,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// scrape-and-load pipeline.
type Metrics struct {
	PagesFetched     prometheus.Counter
	FetchFailures    prometheus.Counter
	RecordsExtracted prometheus.Counter
	RecordsDropped   prometheus.Counter
	RecordsLoaded    prometheus.Counter

	RunsTotal        *prometheus.CounterVec // label: outcome={success,error}
	RunDuration      prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "pages_fetched_total",
			Help:      "Total conditions pages fetched successfully.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "fetch_failures_total",
			Help:      "Total targets skipped because their page fetch failed.",
		}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "records_extracted_total",
			Help:      "Total raw records emitted by the extractor.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "records_dropped_total",
			Help:      "Total records excluded because a mandatory field failed to parse.",
		}),
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "records_loaded_total",
			Help:      "Total typed records appended to the warehouse table.",
		}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-normalize-load run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_etl",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	prometheus.MustRegister(
		m.PagesFetched,
		m.FetchFailures,
		m.RecordsExtracted,
		m.RecordsDropped,
		m.RecordsLoaded,
		m.RunsTotal,
		m.RunDuration,
		m.LastRunTimestamp,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PagesFetched:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "pages_fetched_total"}),
		FetchFailures:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "fetch_failures_total"}),
		RecordsExtracted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "records_extracted_total"}),
		RecordsDropped:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "records_dropped_total"}),
		RecordsLoaded:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "records_loaded_total"}),
		RunsTotal:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "weather_etl", Name: "runs_total"}, []string{"outcome"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_etl", Name: "run_duration_seconds"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weather_etl", Name: "last_run_timestamp_seconds"}),
	}
}

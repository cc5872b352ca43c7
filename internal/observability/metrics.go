package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather export pipeline.
type Metrics struct {
	MonthsFetched   prometheus.Counter
	FetchErrors     prometheus.Counter
	ParseErrors     prometheus.Counter
	RowsParsed      prometheus.Counter
	RecordsExported prometheus.Counter
	EmptyExports    prometheus.Counter
	ExportRunning   prometheus.Gauge
	ExportDuration  prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MonthsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "months_fetched_total",
			Help:      "Total monthly pages fetched successfully.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "fetch_errors_total",
			Help:      "Total monthly page fetches that failed (transport, status, or encoding detection).",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "parse_errors_total",
			Help:      "Total monthly pages that could not be decoded or parsed.",
		}),
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "rows_parsed_total",
			Help:      "Total table rows converted into daily records.",
		}),
		RecordsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "records_exported_total",
			Help:      "Total daily records handed to loaders after date filtering.",
		}),
		EmptyExports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_etl",
			Name:      "empty_exports_total",
			Help:      "Export runs that produced no records inside the lookback window.",
		}),
		ExportRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_etl",
			Name:      "export_running",
			Help:      "1 while a city export is in progress, 0 otherwise.",
		}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_etl",
			Name:      "export_duration_seconds",
			Help:      "Duration of a complete fetch-parse-filter-load cycle for one city.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	prometheus.MustRegister(
		m.MonthsFetched,
		m.FetchErrors,
		m.ParseErrors,
		m.RowsParsed,
		m.RecordsExported,
		m.EmptyExports,
		m.ExportRunning,
		m.ExportDuration,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are not attached to any
// registry. Used by tests (avoids "already registered" panics) and by
// one-shot library callers that have no metrics endpoint to serve.
func NewUnregisteredMetrics() *Metrics {
	return &Metrics{
		MonthsFetched:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "months_fetched_total"}),
		FetchErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "fetch_errors_total"}),
		ParseErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "parse_errors_total"}),
		RowsParsed:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "rows_parsed_total"}),
		RecordsExported: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "records_exported_total"}),
		EmptyExports:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "weather_etl", Name: "empty_exports_total"}),
		ExportRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "weather_etl", Name: "export_running"}),
		ExportDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "weather_etl", Name: "export_duration_seconds"}),
	}
}

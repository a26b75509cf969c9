// Package metrics provides Prometheus metrics for the inventory cost dashboard
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Source metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invcost_fetch_duration_seconds",
			Help:    "Time taken to fetch raw inventory rows from the ERP database",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"strategy", "status"},
	)

	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invcost_fetch_errors_total",
			Help: "Total number of failed fetches by error kind",
		},
		[]string{"kind"},
	)

	RowsFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invcost_rows_fetched_total",
			Help: "Total raw rows read from the ERP database",
		},
	)

	// Dataset metrics
	DatasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "invcost_dataset_records",
			Help: "Number of part records in the cached dataset",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invcost_cache_requests_total",
			Help: "Dataset cache lookups by result (hit, miss, forced)",
		},
		[]string{"result"},
	)

	// Presentation metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invcost_exports_total",
			Help: "Total number of report downloads by format",
		},
		[]string{"format"},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics exposes Prometheus collectors for the analytics API.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "irve_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	datasetRows    prometheus.Gauge
	datasetReloads *prometheus.CounterVec
	datasetLoad    prometheus.Histogram

	exportTotal *prometheus.CounterVec
)

// Init registers the collectors on the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total API requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)

		datasetRows = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "dataset_rows",
				Help: "Rows in the currently loaded clean dataset",
			},
		)
		datasetReloads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "dataset_reloads_total",
				Help: "Clean dataset loads by result",
			},
			[]string{"result"},
		)
		datasetLoad = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "dataset_load_seconds",
				Help:    "Clean dataset load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Workbook exports by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			datasetRows,
			datasetReloads,
			datasetLoad,
			exportTotal,
		)
	})
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// ObserveRequest records one served request.
func ObserveRequest(route, method string, status int, duration time.Duration) {
	if status == 0 {
		status = http.StatusOK
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// ObserveDatasetLoad records a dataset load. rows is ignored on failure.
func ObserveDatasetLoad(rows int, duration time.Duration, err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if datasetReloads != nil {
		datasetReloads.WithLabelValues(result).Inc()
	}
	if err != nil {
		return
	}
	if datasetLoad != nil {
		datasetLoad.Observe(duration.Seconds())
	}
	if datasetRows != nil {
		datasetRows.Set(float64(rows))
	}
}

// IncExport counts a workbook export.
func IncExport(err error) {
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(result).Inc()
	}
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/munindb/munin/pkg/store"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Store operation metrics
	storeOperationsTotal   *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec
	storeRecordsLive       prometheus.Gauge
	storeRecordsPrealloc   prometheus.Gauge
	storeBytesInUse        prometheus.Gauge
	storePagesFree         prometheus.Gauge

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "munin_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "munin_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		storeOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "munin_store_operations_total",
				Help: "Total number of record store operations",
			},
			[]string{"operation", "status"},
		),

		storeOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "munin_store_operation_duration_seconds",
				Help:    "Record store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		storeRecordsLive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "munin_store_records_live",
				Help: "Number of live, materialized records",
			},
		),

		storeRecordsPrealloc: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "munin_store_records_preallocated",
				Help: "Number of preallocated, unmaterialized recids",
			},
		),

		storeBytesInUse: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "munin_store_bytes_in_use",
				Help: "Sum of live payload sizes in bytes",
			},
		),

		storePagesFree: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "munin_store_pages_free",
				Help: "Pages waiting on the free list",
			},
		),

		authRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "munin_auth_requests_total",
				Help: "Total number of authentication attempts",
			},
			[]string{"status"},
		),
	}

	return m
}

// RecordStoreOperation records a store operation outcome
func (m *Metrics) RecordStoreOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.storeOperationsTotal.WithLabelValues(operation, status).Inc()
	m.storeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAuthAttempt records an authentication attempt
func (m *Metrics) RecordAuthAttempt(success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.authRequestsTotal.WithLabelValues(status).Inc()
}

// UpdateStoreGauges refreshes the occupancy gauges from store stats
func (m *Metrics) UpdateStoreGauges(stats store.Stats) {
	m.storeRecordsLive.Set(float64(stats.LiveRecords))
	m.storeRecordsPrealloc.Set(float64(stats.PreallocatedRecords))
	m.storeBytesInUse.Set(float64(stats.BytesInUse))
	m.storePagesFree.Set(float64(stats.FreePages))
}

// InstrumentHandler wraps an HTTP handler with request metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		handler(recorder, r)

		m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(recorder.statusCode)).Inc()
		m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// wizard sessions it hosts.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrite      prometheus.Histogram
	sessionsActive  prometheus.Gauge
	sessionsOpened  prometheus.Counter
	sessionsClosed  *prometheus.CounterVec
	uploads         *prometheus.CounterVec
	uploadBytes     prometheus.Histogram
	uploadDuration  prometheus.Histogram
	submissions     *prometheus.CounterVec
	submitDuration  prometheus.Histogram
	auditJobs       *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency for cache reads",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency for cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wizard_sessions_active",
			Help: "Profile wizard sessions currently open",
		}),
		sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wizard_sessions_opened_total",
			Help: "Profile wizard sessions opened",
		}),
		sessionsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wizard_sessions_closed_total",
			Help: "Profile wizard sessions closed by reason",
		}, []string{"reason"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wizard_document_uploads_total",
			Help: "Document uploads by field and outcome",
		}, []string{"field", "outcome"}),
		uploadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wizard_document_upload_bytes",
			Help:    "Size of uploaded documents",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 7),
		}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wizard_document_upload_seconds",
			Help:    "Duration of single document uploads",
			Buckets: prometheus.DefBuckets,
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wizard_submissions_total",
			Help: "Profile submissions by mode and outcome",
		}, []string{"mode", "outcome"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wizard_submit_seconds",
			Help:    "Duration of the submission pipeline",
			Buckets: prometheus.DefBuckets,
		}),
		auditJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_jobs_total",
			Help: "Audit log writes by outcome",
		}, []string{"outcome"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.cacheLookups, m.cacheLatency, m.cacheWrite,
		m.sessionsActive, m.sessionsOpened, m.sessionsClosed,
		m.uploads, m.uploadBytes, m.uploadDuration,
		m.submissions, m.submitDuration,
		m.auditJobs, goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records a cache read.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// SessionOpened counts a newly mounted wizard.
func (m *MetricsService) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsOpened.Inc()
	m.sessionsActive.Inc()
}

// SessionClosed counts a wizard leaving the registry.
func (m *MetricsService) SessionClosed(reason string) {
	if m == nil {
		return
	}
	m.sessionsClosed.WithLabelValues(reason).Inc()
	m.sessionsActive.Dec()
}

// ObserveUpload records one durable upload attempt.
func (m *MetricsService) ObserveUpload(field string, size int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.uploads.WithLabelValues(field, outcome).Inc()
	m.uploadDuration.Observe(duration.Seconds())
	if err == nil {
		m.uploadBytes.Observe(float64(size))
	}
}

// ObserveSubmission records the outcome of one submission attempt.
func (m *MetricsService) ObserveSubmission(editing bool, duration time.Duration, err error) {
	if m == nil {
		return
	}
	mode := "create"
	if editing {
		mode = "update"
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.submissions.WithLabelValues(mode, outcome).Inc()
	m.submitDuration.Observe(duration.Seconds())
}

// ObserveAuditJob records the final outcome of an audit write.
func (m *MetricsService) ObserveAuditJob(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.auditJobs.WithLabelValues("failure").Inc()
		return
	}
	m.auditJobs.WithLabelValues("success").Inc()
}

package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsTotal    *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	fallbackHitsTotal *prometheus.CounterVec
	batchesTotal      *prometheus.CounterVec
	exportsTotal      *prometheus.CounterVec
	modelCallsTotal   *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taxlens",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taxlens",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "taxlens",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taxlens",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total documents processed by terminal status.",
		},
		[]string{"service", "status"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taxlens",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Per-stage processing duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "stage"},
	)
	fallbackHitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taxlens",
			Subsystem: "pipeline",
			Name:      "fallback_hits_total",
			Help:      "Total fields recovered by regex fallback rules.",
		},
		[]string{"service", "field"},
	)
	batchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taxlens",
			Subsystem: "pipeline",
			Name:      "batches_total",
			Help:      "Total batches started by mode.",
		},
		[]string{"service", "mode"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taxlens",
			Subsystem: "export",
			Name:      "exports_total",
			Help:      "Total batch exports by format.",
		},
		[]string{"service", "format"},
	)
	modelCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taxlens",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Total model invocations by outcome.",
		},
		[]string{"service", "model", "status"},
	)
	modelCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "taxlens",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Model invocation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "model"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsTotal,
		stageDuration,
		fallbackHitsTotal,
		batchesTotal,
		exportsTotal,
		modelCallsTotal,
		modelCallDuration,
	)

	return &ServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		documentsTotal:    documentsTotal,
		stageDuration:     stageDuration,
		fallbackHitsTotal: fallbackHitsTotal,
		batchesTotal:      batchesTotal,
		exportsTotal:      exportsTotal,
		modelCallsTotal:   modelCallsTotal,
		modelCallDuration: modelCallDuration,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/batches/"):
		rest := strings.TrimPrefix(path, "/v1/batches/")
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			return "/v1/batches/{batch_id}/" + rest[i+1:]
		}
		return "/v1/batches/{batch_id}"
	default:
		return path
	}
}

func (m *ServerMetrics) RecordDocument(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.documentsTotal.WithLabelValues(service, status).Inc()
}

func (m *ServerMetrics) ObserveStage(service, stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(service, stage).Observe(duration.Seconds())
}

func (m *ServerMetrics) RecordFallbackHit(service, field string) {
	m.fallbackHitsTotal.WithLabelValues(service, field).Inc()
}

func (m *ServerMetrics) RecordBatch(service, mode string) {
	if mode == "" {
		mode = "unknown"
	}
	m.batchesTotal.WithLabelValues(service, mode).Inc()
}

func (m *ServerMetrics) RecordExport(service, format string) {
	if format == "" {
		format = "unknown"
	}
	m.exportsTotal.WithLabelValues(service, format).Inc()
}

func (m *ServerMetrics) RecordModelCall(service, model, status string, duration time.Duration) {
	if model == "" {
		model = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.modelCallsTotal.WithLabelValues(service, model, status).Inc()
	m.modelCallDuration.WithLabelValues(service, model).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}

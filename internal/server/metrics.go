package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	constants "pimonitor/config"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)

	rateLimitRejects = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "rate_limit_rejects_total",
			Help:      "Total number of requests rejected due to rate limiting",
		},
	)

	panicRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "panic_recoveries_total",
			Help:      "Total number of panics recovered in HTTP handlers",
		},
	)

	authDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "auth_denied_total",
			Help:      "Requests refused for a wrong or missing passcode",
		},
		[]string{"path"},
	)

	processControlTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constants.METRICS_NAMESPACE,
			Name:      "process_control_total",
			Help:      "Process control requests by action and outcome",
		},
		[]string{"action", "outcome"},
	)
)

// routeLabel keeps the path label bounded; every static file counts as one route
func routeLabel(path string) string {
	switch path {
	case pathLiveSync, pathDeadSync, pathProcInfo, pathKillProc, pathTermProc,
		pathSuspProc, pathResmProc, pathHealth, pathMetrics:
		return path
	}
	return "static"
}

// metricsMiddleware instruments HTTP requests with Prometheus metrics.
// It tracks request rate, errors, and duration (RED metrics).
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := newResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		path := routeLabel(r.URL.Path)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	}
}

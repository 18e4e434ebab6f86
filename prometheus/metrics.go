package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Invitation lifecycle counter
	InvitationOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_invitation_operations_total",
			Help: "Total number of invitation operations",
		},
		[]string{"operation", "outcome"}, // operation: issue, verify, accept, revoke
	)

	// Tenancy resolutions by path
	TenancyResolutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_tenancy_resolutions_total",
			Help: "Total number of workspace or portal client resolutions",
		},
		[]string{"path"}, // path: staff, portal, admin
	)

	// Portal read counter
	PortalQueryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_portal_queries_total",
			Help: "Total number of client portal queries",
		},
		[]string{"resource"},
	)

	// Credential pairs issued
	IssuedTokensCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_issued_tokens_total",
			Help: "Total number of access/refresh pairs issued",
		},
		[]string{"reason"}, // reason: login, refresh, register, invitation
	)

	// Application errors by kind
	AppErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_app_errors_total",
			Help: "Total number of errors returned to callers",
		},
		[]string{"kind"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practice_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practice_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "practice_info",
			Help: "Information about the practice service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(InvitationOperationCounter)
	prometheus.MustRegister(TenancyResolutionCounter)
	prometheus.MustRegister(PortalQueryCounter)
	prometheus.MustRegister(IssuedTokensCounter)
	prometheus.MustRegister(AppErrorCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(InfoGauge)
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations. Use as
// defer TrackDBOperation("query")(time.Now()).
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(time.Since(startTime).Seconds())
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordInvitationOperation records an invitation operation and its outcome
func RecordInvitationOperation(operation, outcome string) {
	InvitationOperationCounter.With(prometheus.Labels{
		"operation": operation,
		"outcome":   outcome,
	}).Inc()
}

// RecordTenancyResolution records which resolution path served a request
func RecordTenancyResolution(path string) {
	TenancyResolutionCounter.With(prometheus.Labels{"path": path}).Inc()
}

// RecordPortalQuery records a portal read by resource
func RecordPortalQuery(resource string) {
	PortalQueryCounter.With(prometheus.Labels{"resource": resource}).Inc()
}

// RecordIssuedTokens records a freshly issued credential pair
func RecordIssuedTokens(reason string) {
	IssuedTokensCounter.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordAppError records an error returned to a caller by kind
func RecordAppError(kind string) {
	AppErrorCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

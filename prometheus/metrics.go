package prometheus

import (
	"time"

	"company-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter  prometheus.Counter
	AuthSuccessCounter   prometheus.Counter
	AuthErrorsCounter    prometheus.Counter
	AdminRequiredCounter prometheus.Counter

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Entity operation metrics
	CompanyOperationsCounter    prometheus.CounterVec
	HistoryOperationsCounter    prometheus.CounterVec
	AttachmentOperationsCounter prometheus.CounterVec
	PaymentOperationsCounter    prometheus.CounterVec

	// Active companies being administered
	ActiveCompaniesGauge prometheus.Gauge
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthSuccessCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	AdminRequiredCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_admin_required_total",
			Help: "Total number of requests rejected for missing admin role",
		},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CompanyOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_company_operations_total",
			Help: "Total number of company operations",
		},
		[]string{"operation"},
	)

	HistoryOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_history_operations_total",
			Help: "Total number of history operations",
		},
		[]string{"operation"},
	)

	AttachmentOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_attachment_operations_total",
			Help: "Total number of history attachment operations",
		},
		[]string{"operation"},
	)

	PaymentOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_payment_operations_total",
			Help: "Total number of payment operations",
		},
		[]string{"operation"},
	)

	ActiveCompaniesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_active_companies",
			Help: "Number of companies currently marked active",
		},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordCompanyOperation increments the counter for company operations
func RecordCompanyOperation(operation string) {
	CompanyOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordHistoryOperation increments the counter for history operations
func RecordHistoryOperation(operation string) {
	HistoryOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordAttachmentOperation increments the counter for attachment operations
func RecordAttachmentOperation(operation string) {
	AttachmentOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordPaymentOperation increments the counter for payment operations
func RecordPaymentOperation(operation string) {
	PaymentOperationsCounter.WithLabelValues(operation).Inc()
}

// UpdateActiveCompanies updates the active companies gauge
func UpdateActiveCompanies(count int) {
	ActiveCompaniesGauge.Set(float64(count))
}

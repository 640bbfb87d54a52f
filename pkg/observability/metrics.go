// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the lawlibrary API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// HashBuckets defines histogram buckets suited for bcrypt work, which is
// deliberately slow (tens to hundreds of milliseconds at cost 12).
var HashBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Outcome label values for AuthAttemptsTotal.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeUnauthenticated    = "unauthenticated"
	OutcomeError              = "error"
)

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lawlibrary_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lawlibrary_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// InFlightRequests tracks the number of requests currently being served.
	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lawlibrary_requests_in_flight",
			Help: "Requests in flight",
		},
	)

	// AuthAttemptsTotal counts login and per-request authentication attempts
	// by operation ("login", "request") and outcome.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lawlibrary_auth_attempts_total",
			Help: "Authentication attempts",
		},
		[]string{"operation", "outcome"},
	)

	// PasswordHashDuration records bcrypt latency by operation ("hash", "verify").
	PasswordHashDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lawlibrary_password_hash_duration_seconds",
			Help:    "Password hashing latency",
			Buckets: HashBuckets,
		},
		[]string{"operation"},
	)

	// StoreQueryDuration records account store latency by operation.
	StoreQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lawlibrary_store_query_duration_seconds",
			Help:    "Account store query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lawlibrary_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InFlightRequests,
		AuthAttemptsTotal,
		PasswordHashDuration,
		StoreQueryDuration,
		RateLimitRejectedTotal,
	)
}

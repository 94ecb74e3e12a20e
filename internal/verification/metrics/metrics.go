package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for certificate verification.
type Metrics struct {
	VerificationsValid   prometheus.Counter
	VerificationsInvalid prometheus.Counter
	VerifyDuration       prometheus.Histogram
}

// New creates and registers the verification metrics.
func New() *Metrics {
	return &Metrics{
		VerificationsValid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "securevault_verifications_valid_total",
			Help: "Verification lookups that resolved to an existing certificate",
		}),
		VerificationsInvalid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "securevault_verifications_invalid_total",
			Help: "Verification lookups that did not resolve to a certificate",
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "securevault_verify_duration_seconds",
			Help:    "Latency of verification lookups including the log append",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

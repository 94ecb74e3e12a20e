package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for certificate issuance. Construct
// once in main; services treat a nil receiver-holder as metrics disabled.
type Metrics struct {
	CertificatesIssued   prometheus.Counter
	CertificatesDeleted  prometheus.Counter
	IssueIDCollisions    prometheus.Counter
	IssueRetriesExhausted prometheus.Counter
}

// New creates and registers the certificate metrics.
func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "securevault_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		CertificatesDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "securevault_certificates_deleted_total",
			Help: "Total number of certificates deleted",
		}),
		IssueIDCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "securevault_issue_id_collisions_total",
			Help: "Generated certificate IDs that collided with an existing record",
		}),
		IssueRetriesExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "securevault_issue_retries_exhausted_total",
			Help: "Issue attempts that failed after exhausting ID generation retries",
		}),
	}
}

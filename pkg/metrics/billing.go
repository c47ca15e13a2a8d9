package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingJobMetrics records metadata for ledger runs and reminder batches.
type BillingJobMetrics struct {
	duration     *prometheus.HistogramVec
	success      *prometheus.CounterVec
	failure      *prometheus.CounterVec
	debtsCreated *prometheus.CounterVec
}

// NewBillingJobMetrics registers the billing job metrics on the provided registerer.
func NewBillingJobMetrics(reg prometheus.Registerer) *BillingJobMetrics {
	if reg == nil {
		return &BillingJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "billing_job_duration_seconds",
		Help:    "Duration of billing jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_job_success",
		Help: "Successful billing job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_job_failure",
		Help: "Failed billing job executions.",
	}, []string{"job"})
	debtsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_debts_created_total",
		Help: "Debt records created by generation runs.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure, debtsCreated)
	return &BillingJobMetrics{
		duration:     duration,
		success:      success,
		failure:      failure,
		debtsCreated: debtsCreated,
	}
}

// ObserveDuration records the duration for the named job.
func (b *BillingJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (b *BillingJobMetrics) IncSuccess(job string) {
	if b == nil || b.success == nil {
		return
	}
	b.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (b *BillingJobMetrics) IncFailure(job string) {
	if b == nil || b.failure == nil {
		return
	}
	b.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// AddDebtsCreated adds the created-count from a generation run.
func (b *BillingJobMetrics) AddDebtsCreated(job string, count int) {
	if b == nil || b.debtsCreated == nil || count <= 0 {
		return
	}
	b.debtsCreated.WithLabelValues(normalizeLabel(job)).Add(float64(count))
}

func normalizeLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}

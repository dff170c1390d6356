package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch outcomes.
const (
	OutcomeProcessed    = "processed"
	OutcomeAcknowledged = "acknowledged"
	OutcomeFailed       = "failed"
)

// BillingMetrics records event dispatch and payment metrics.
type BillingMetrics interface {
	ObserveDispatch(eventType, outcome string, elapsed time.Duration)
	ObservePaymentAmount(amount float64, currency string)
}

type billingMetrics struct {
	eventsTotal     *prometheus.CounterVec
	dispatchSeconds *prometheus.HistogramVec
	paymentAmount   *prometheus.HistogramVec
}

// NewBillingMetrics registers the billing metrics on registry.
func NewBillingMetrics(registry *prometheus.Registry) BillingMetrics {
	eventsTotal := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_webhook_events_total",
			Help: "The total number of dispatched provider events by type and outcome",
		},
		[]string{"event_type", "outcome"},
	)

	dispatchSeconds := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_webhook_dispatch_seconds",
			Help:    "Time spent dispatching one provider event",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"event_type"},
	)

	paymentAmount := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_payment_amount",
			Help:    "Recorded payment amounts in major currency units",
			Buckets: prometheus.ExponentialBuckets(1, 10, 6), // 1 .. 100000
		},
		[]string{"currency"},
	)

	return &billingMetrics{
		eventsTotal:     eventsTotal,
		dispatchSeconds: dispatchSeconds,
		paymentAmount:   paymentAmount,
	}
}

func (m *billingMetrics) ObserveDispatch(eventType, outcome string, elapsed time.Duration) {
	m.eventsTotal.WithLabelValues(eventType, outcome).Inc()
	m.dispatchSeconds.WithLabelValues(eventType).Observe(elapsed.Seconds())
}

func (m *billingMetrics) ObservePaymentAmount(amount float64, currency string) {
	m.paymentAmount.WithLabelValues(currency).Observe(amount)
}

type noopMetrics struct{}

// NewNoopMetrics returns metrics that record nothing.
func NewNoopMetrics() BillingMetrics {
	return noopMetrics{}
}

func (noopMetrics) ObserveDispatch(string, string, time.Duration) {}

func (noopMetrics) ObservePaymentAmount(float64, string) {}

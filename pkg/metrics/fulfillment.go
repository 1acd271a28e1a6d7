package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records checkout outcomes and sub-order transitions.
type FulfillmentMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkoutOutcome  *prometheus.CounterVec
	transitions      *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	checkoutOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts partitioned by outcome.",
	}, []string{"payment_method", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sub_order_transitions_total",
		Help: "Sub-order lifecycle transitions partitioned by target status.",
	}, []string{"to", "actor"})
	reg.MustRegister(checkoutDuration, checkoutOutcome, transitions)
	return &FulfillmentMetrics{
		checkoutDuration: checkoutDuration,
		checkoutOutcome:  checkoutOutcome,
		transitions:      transitions,
	}
}

// ObserveCheckout records the duration for a checkout with the given payment method.
func (m *FulfillmentMetrics) ObserveCheckout(method string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncCheckout increments the checkout counter for the method/outcome pair.
func (m *FulfillmentMetrics) IncCheckout(method, outcome string) {
	if m == nil || m.checkoutOutcome == nil {
		return
	}
	m.checkoutOutcome.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncTransition increments the transition counter for the target status/actor pair.
func (m *FulfillmentMetrics) IncTransition(to, actor string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to), normalizeLabel(actor)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

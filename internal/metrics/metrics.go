// Package metrics holds the Prometheus collectors for recommendations and payments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the module exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	RecommendationsTotal      *prometheus.CounterVec
	RecommendationFaultsTotal *prometheus.CounterVec
	PaymentAttemptsTotal      prometheus.Counter
	PaymentOutcomesTotal      *prometheus.CounterVec
	EntitlementGrantsTotal    prometheus.Counter
	MarketRefreshFailures     prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RecommendationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kycrypto",
			Name:      "recommendations_total",
			Help:      "Portfolios returned, by source (ai or fallback).",
		}, []string{"source"}),
		RecommendationFaultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kycrypto",
			Name:      "recommendation_faults_total",
			Help:      "Recommendation faults absorbed by the fallback table, by stage.",
		}, []string{"stage"}),
		PaymentAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kycrypto",
			Name:      "payment_attempts_total",
			Help:      "Checkout attempts initiated.",
		}),
		PaymentOutcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kycrypto",
			Name:      "payment_outcomes_total",
			Help:      "Resolved payment attempts, by outcome and trigger.",
		}, []string{"outcome", "trigger"}),
		EntitlementGrantsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kycrypto",
			Name:      "entitlement_grants_total",
			Help:      "Premium entitlements granted.",
		}),
		MarketRefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kycrypto",
			Name:      "market_refresh_failures_total",
			Help:      "Failed market snapshot refreshes.",
		}),
	}
	m.Registry.MustRegister(
		m.RecommendationsTotal,
		m.RecommendationFaultsTotal,
		m.PaymentAttemptsTotal,
		m.PaymentOutcomesTotal,
		m.EntitlementGrantsTotal,
		m.MarketRefreshFailures,
	)
	return m
}

func (m *Metrics) Recommendation(source string) {
	if m == nil {
		return
	}
	m.RecommendationsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) RecommendationFault(stage string) {
	if m == nil {
		return
	}
	m.RecommendationFaultsTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) PaymentAttempt() {
	if m == nil {
		return
	}
	m.PaymentAttemptsTotal.Inc()
}

func (m *Metrics) PaymentOutcome(outcome, trigger string) {
	if m == nil {
		return
	}
	m.PaymentOutcomesTotal.WithLabelValues(outcome, trigger).Inc()
}

func (m *Metrics) EntitlementGranted() {
	if m == nil {
		return
	}
	m.EntitlementGrantsTotal.Inc()
}

func (m *Metrics) MarketRefreshFailed() {
	if m == nil {
		return
	}
	m.MarketRefreshFailures.Inc()
}

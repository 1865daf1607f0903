package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Recommendation("fallback")
	m.Recommendation("fallback")
	m.RecommendationFault("parse")
	m.PaymentAttempt()
	m.PaymentOutcome("SUCCESS", "RETURN_PARAMETER")
	m.EntitlementGranted()
	m.MarketRefreshFailed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecommendationsTotal.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecommendationFaultsTotal.WithLabelValues("parse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentAttemptsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentOutcomesTotal.WithLabelValues("SUCCESS", "RETURN_PARAMETER")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EntitlementGrantsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MarketRefreshFailures))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Recommendation("ai")
		m.RecommendationFault("network")
		m.PaymentAttempt()
		m.PaymentOutcome("FAILURE", "SURFACE_CLOSED")
		m.EntitlementGranted()
		m.MarketRefreshFailed()
	})
}

package recorder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordRecommendation(&RecommendationEvent{
		Source: "fallback", PortfolioType: "Conservative", RiskTolerance: "low",
		TotalValue: 100, Entries: 5, Fault: "parse",
	}))
	require.NoError(t, r.RecordPayment(&PaymentEvent{AttemptID: "a1", Outcome: "SUCCESS", Trigger: "RETURN_PARAMETER", Granted: true}))
	require.NoError(t, r.RecordPayment(&PaymentEvent{AttemptID: "a2", Outcome: "ABANDONED", Trigger: "SURFACE_CLOSED"}))

	n, err := r.CountPayments("SUCCESS")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var recs int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM recommendations`).Scan(&recs))
	assert.Equal(t, 1, recs)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordPayment(&PaymentEvent{}))
	assert.NoError(t, r.RecordRecommendation(&RecommendationEvent{}))
	assert.NoError(t, r.Close())
}

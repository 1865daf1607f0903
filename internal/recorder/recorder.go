package recorder

import "time"

// RecommendationEvent records one Acquire call.
type RecommendationEvent struct {
	Source        string // "ai" or "fallback"
	PortfolioType string
	RiskTolerance string
	TotalValue    float64
	Entries       int
	Fault         string // empty when the AI result was used
	At            time.Time
}

// PaymentEvent records one resolved payment attempt.
type PaymentEvent struct {
	AttemptID string
	Outcome   string // "SUCCESS", "FAILURE", "ABANDONED"
	Trigger   string
	Reason    string
	Granted   bool
	At        time.Time
}

// Recorder persists an append-only audit trail. Nothing reads it back at runtime.
type Recorder interface {
	RecordRecommendation(evt *RecommendationEvent) error
	RecordPayment(evt *PaymentEvent) error
	Close() error
}

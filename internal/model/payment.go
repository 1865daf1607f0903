package model

import "time"

// PaymentState is a state of the payment flow controller.
type PaymentState string

const (
	PaymentIdle             PaymentState = "IDLE"
	PaymentAwaitingCheckout PaymentState = "AWAITING_CHECKOUT"
	PaymentResolving        PaymentState = "RESOLVING"
	PaymentSuccess          PaymentState = "SUCCESS"
	PaymentFailure          PaymentState = "FAILURE"
)

// PaymentOutcome is how an attempt concluded.
type PaymentOutcome string

const (
	OutcomeSuccess   PaymentOutcome = "SUCCESS"
	OutcomeFailure   PaymentOutcome = "FAILURE"
	OutcomeAbandoned PaymentOutcome = "ABANDONED"
)

// ResolveTrigger names the event that moved an attempt into resolving.
type ResolveTrigger string

const (
	TriggerSurfaceClosed   ResolveTrigger = "SURFACE_CLOSED"
	TriggerReturnParameter ResolveTrigger = "RETURN_PARAMETER"
	TriggerCheckoutError   ResolveTrigger = "CHECKOUT_ERROR"
)

// PaymentAttempt is the ephemeral record of one checkout in flight.
type PaymentAttempt struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	CheckoutURL string    `json:"checkoutUrl"`
	ReturnURL   string    `json:"returnUrl"`
}

// PaymentResult is delivered to exactly one callback per attempt.
type PaymentResult struct {
	AttemptID  string         `json:"attemptId"`
	Outcome    PaymentOutcome `json:"outcome"`
	Trigger    ResolveTrigger `json:"trigger"`
	Reason     string         `json:"reason,omitempty"`
	Err        error          `json:"-"`
	ResolvedAt time.Time      `json:"resolvedAt"`
}

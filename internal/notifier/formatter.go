package notifier

import (
	"fmt"
	"strings"
	"time"

	"KYCrypto/internal/model"
)

// FormatPaymentAlert formats a resolved attempt for the operator chat.
func FormatPaymentAlert(r model.PaymentResult) string {
	var b strings.Builder
	switch r.Outcome {
	case model.OutcomeSuccess:
		b.WriteString("✅ <b>Detailed analysis unlocked</b>\n\n")
	case model.OutcomeAbandoned:
		b.WriteString("🚪 <b>Checkout abandoned</b>\n\n")
	default:
		b.WriteString("❌ <b>Payment failed</b>\n\n")
	}
	b.WriteString(fmt.Sprintf("Attempt: %s\n", r.AttemptID))
	b.WriteString(fmt.Sprintf("Trigger: %s\n", strings.ToLower(strings.ReplaceAll(string(r.Trigger), "_", " "))))
	if r.Reason != "" {
		b.WriteString(fmt.Sprintf("Reason: %s\n", r.Reason))
	}
	at := r.ResolvedAt
	if at.IsZero() {
		at = time.Now()
	}
	b.WriteString(fmt.Sprintf("Time: %s\n", at.UTC().Format("2006-01-02 15:04")))
	return b.String()
}

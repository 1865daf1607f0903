package notifier

import (
	"context"
	"time"

	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
)

// Callbacks receive the single result of each payment attempt.
type Callbacks struct {
	OnSuccess func(model.PaymentResult)
	OnFailure func(model.PaymentResult)
}

// Deliver invokes exactly one of the callbacks according to r.Outcome.
func (c Callbacks) Deliver(r model.PaymentResult) {
	if r.Outcome == model.OutcomeSuccess {
		if c.OnSuccess != nil {
			c.OnSuccess(r)
		}
		return
	}
	if c.OnFailure != nil {
		c.OnFailure(r)
	}
}

// Chain returns callbacks that run c first and then next.
func (c Callbacks) Chain(next Callbacks) Callbacks {
	return Callbacks{
		OnSuccess: func(r model.PaymentResult) {
			if c.OnSuccess != nil {
				c.OnSuccess(r)
			}
			if next.OnSuccess != nil {
				next.OnSuccess(r)
			}
		},
		OnFailure: func(r model.PaymentResult) {
			if c.OnFailure != nil {
				c.OnFailure(r)
			}
			if next.OnFailure != nil {
				next.OnFailure(r)
			}
		},
	}
}

// AlertCallbacks forwards successful purchases to the operator chat in the
// background. Failures are only alerted when alertFailures is set.
func AlertCallbacks(ctx context.Context, t *TelegramNotifier, alertFailures bool, logger logging.Logger) Callbacks {
	send := func(r model.PaymentResult) {
		go func() {
			sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if err := t.SendWithRetry(sendCtx, FormatPaymentAlert(r), 3); err != nil {
				logger.Error("send payment alert", logging.Err(err))
			}
		}()
	}
	cb := Callbacks{OnSuccess: send}
	if alertFailures {
		cb.OnFailure = send
	}
	return cb
}

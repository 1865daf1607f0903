package payment

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"KYCrypto/internal/kv"
	"KYCrypto/internal/model"
)

// Ephemeral keys owned by the payment flow.
const (
	KeyPending          = "payment_pending"
	KeyPendingSuccess   = "pending_payment_success"
	KeyLastResolved     = "payment_last_resolved"
	KeyPendingPortfolio = "pending_portfolio"
)

// PreservePortfolio stores the current recommendation so it survives a
// redirect-based checkout.
func PreservePortfolio(ctx context.Context, store kv.Store, p model.Portfolio) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal pending portfolio: %w", err)
	}
	return store.Set(ctx, KeyPendingPortfolio, string(raw))
}

// RestorePortfolio returns and removes the preserved recommendation.
// ok is false when nothing was stored or the stored value is unreadable.
func RestorePortfolio(ctx context.Context, store kv.Store) (p model.Portfolio, ok bool, err error) {
	raw, found, err := store.Get(ctx, KeyPendingPortfolio)
	if err != nil || !found {
		return p, false, err
	}
	if err := store.Delete(ctx, KeyPendingPortfolio); err != nil {
		return p, false, err
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.Portfolio{}, false, fmt.Errorf("%w: pending portfolio: %v", model.ErrStorageCorruption, err)
	}
	return p, true, nil
}

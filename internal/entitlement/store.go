// Package entitlement decides whether the premium detailed-analysis view is
// unlocked. State lives in two key-value entries; expiration is evaluated
// lazily on every read.
package entitlement

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"KYCrypto/internal/kv"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
)

const (
	KeyPremium    = "kycrypto_premium"
	KeyExpiration = "kycrypto_premium_expiration"
)

// DefaultTTL is the lifetime of a purchased entitlement.
const DefaultTTL = 12 * time.Hour

// Store grants, checks and revokes the premium entitlement.
type Store interface {
	// Grant marks the entitlement active. ttl <= 0 means it never expires.
	Grant(ctx context.Context, ttl time.Duration) error
	// IsActive clears expired or corrupt state as a side effect.
	IsActive(ctx context.Context) bool
	Revoke(ctx context.Context) error
	// Status reads the raw persisted state without any cleanup.
	Status(ctx context.Context) (model.Entitlement, error)
}

// KVStore implements Store over a kv.Store.
type KVStore struct {
	kv     kv.Store
	now    func() time.Time
	logger logging.Logger
}

// Option configures a KVStore.
type Option func(*KVStore)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *KVStore) { s.now = now }
}

func NewKVStore(store kv.Store, logger logging.Logger, opts ...Option) *KVStore {
	s := &KVStore{kv: store, now: time.Now, logger: logger.Named("entitlement")}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *KVStore) Grant(ctx context.Context, ttl time.Duration) error {
	if err := s.kv.Set(ctx, KeyPremium, "true"); err != nil {
		return fmt.Errorf("grant entitlement: %w", err)
	}
	if ttl <= 0 {
		if err := s.kv.Delete(ctx, KeyExpiration); err != nil {
			return fmt.Errorf("grant entitlement: %w", err)
		}
		s.logger.Info("entitlement granted without expiry")
		return nil
	}
	expiresAt := s.now().Add(ttl)
	if err := s.kv.Set(ctx, KeyExpiration, strconv.FormatInt(expiresAt.UnixMilli(), 10)); err != nil {
		return fmt.Errorf("grant entitlement: %w", err)
	}
	s.logger.Info("entitlement granted", logging.String("expires_at", expiresAt.UTC().Format(time.RFC3339)))
	return nil
}

func (s *KVStore) IsActive(ctx context.Context) bool {
	ent, err := s.Status(ctx)
	if err != nil {
		s.logger.Warn("entitlement state unreadable, clearing", logging.Err(err))
		s.clear(ctx)
		return false
	}
	if !ent.Granted {
		return false
	}
	if ent.ActiveAt(s.now()) {
		return true
	}
	s.logger.Info("entitlement expired, clearing")
	s.clear(ctx)
	return false
}

func (s *KVStore) Revoke(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyPremium, KeyExpiration); err != nil {
		return fmt.Errorf("revoke entitlement: %w", err)
	}
	s.logger.Info("entitlement revoked")
	return nil
}

func (s *KVStore) Status(ctx context.Context) (model.Entitlement, error) {
	var ent model.Entitlement
	flag, ok, err := s.kv.Get(ctx, KeyPremium)
	if err != nil {
		return ent, fmt.Errorf("read premium flag: %w", err)
	}
	ent.Granted = ok && flag == "true"

	raw, ok, err := s.kv.Get(ctx, KeyExpiration)
	if err != nil {
		return ent, fmt.Errorf("read premium expiration: %w", err)
	}
	if !ok {
		return ent, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return model.Entitlement{}, fmt.Errorf("%w: expiration %q", model.ErrStorageCorruption, raw)
	}
	expiresAt := time.UnixMilli(ms)
	ent.ExpiresAt = &expiresAt
	return ent, nil
}

func (s *KVStore) clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, KeyPremium, KeyExpiration); err != nil {
		s.logger.Error("clear entitlement", logging.Err(err))
	}
}

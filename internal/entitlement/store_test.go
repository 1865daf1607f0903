package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KYCrypto/internal/kv"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// countingKV records mutations so tests can assert on side effects.
type countingKV struct {
	*kv.MemoryStore
	deletes int
	failGet bool
}

func (c *countingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if c.failGet {
		return "", false, errors.New("storage offline")
	}
	return c.MemoryStore.Get(ctx, key)
}

func (c *countingKV) Delete(ctx context.Context, keys ...string) error {
	c.deletes++
	return c.MemoryStore.Delete(ctx, keys...)
}

func newStore() (*KVStore, *countingKV, *fakeClock) {
	backing := &countingKV{MemoryStore: kv.NewMemoryStore()}
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewKVStore(backing, logging.NewNopLogger(), WithClock(clock.Now)), backing, clock
}

func TestFreshStoreIsInactive(t *testing.T) {
	s, _, _ := newStore()
	assert.False(t, s.IsActive(context.Background()))
}

func TestGrantWithoutTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newStore()
	require.NoError(t, s.Grant(ctx, 0))

	for i := 0; i < 5; i++ {
		clock.Advance(365 * 24 * time.Hour)
		assert.True(t, s.IsActive(ctx))
	}
	ent, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, ent.ExpiresAt)
}

func TestGrantWithTTLExpiresLazily(t *testing.T) {
	ctx := context.Background()
	s, backing, clock := newStore()
	require.NoError(t, s.Grant(ctx, DefaultTTL))

	clock.Advance(DefaultTTL)
	assert.True(t, s.IsActive(ctx), "active exactly at expiry")

	clock.Advance(time.Millisecond)
	assert.False(t, s.IsActive(ctx))

	_, ok, _ := backing.MemoryStore.Get(ctx, KeyPremium)
	assert.False(t, ok)
	_, ok, _ = backing.MemoryStore.Get(ctx, KeyExpiration)
	assert.False(t, ok)
}

func TestIsActiveRepeatedCallsAreStable(t *testing.T) {
	ctx := context.Background()
	s, backing, clock := newStore()
	require.NoError(t, s.Grant(ctx, time.Hour))
	clock.Advance(2 * time.Hour)

	before := backing.deletes
	for i := 0; i < 10; i++ {
		assert.False(t, s.IsActive(ctx))
	}
	assert.Equal(t, before+1, backing.deletes, "only the first expired read cleans up")
}

func TestRegrantReplacesExpiry(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newStore()
	require.NoError(t, s.Grant(ctx, time.Hour))
	require.NoError(t, s.Grant(ctx, 0))
	clock.Advance(48 * time.Hour)
	assert.True(t, s.IsActive(ctx))
}

func TestRevokeClearsBoth(t *testing.T) {
	ctx := context.Background()
	s, backing, _ := newStore()
	require.NoError(t, s.Grant(ctx, time.Hour))
	require.NoError(t, s.Revoke(ctx))
	assert.False(t, s.IsActive(ctx))
	assert.Equal(t, 0, backing.Len())
}

func TestCorruptExpirationIsInactiveAndCleared(t *testing.T) {
	ctx := context.Background()
	s, backing, _ := newStore()
	require.NoError(t, backing.Set(ctx, KeyPremium, "true"))
	require.NoError(t, backing.Set(ctx, KeyExpiration, "tomorrow-ish"))

	_, err := s.Status(ctx)
	assert.True(t, errors.Is(err, model.ErrStorageCorruption))

	assert.False(t, s.IsActive(ctx))
	assert.Equal(t, 0, backing.Len())
}

func TestNonTrueFlagIsInactive(t *testing.T) {
	ctx := context.Background()
	s, backing, _ := newStore()
	require.NoError(t, backing.Set(ctx, KeyPremium, "yes"))
	assert.False(t, s.IsActive(ctx))
}

func TestStorageErrorReadsInactive(t *testing.T) {
	ctx := context.Background()
	s, backing, _ := newStore()
	require.NoError(t, s.Grant(ctx, 0))
	backing.failGet = true
	assert.False(t, s.IsActive(ctx))
}

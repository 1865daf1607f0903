package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
)

// MockFetcher returns fixed quotes for development and testing.
type MockFetcher struct {
	Quotes []model.MarketQuote
	Err    error
	Calls  atomic.Int32
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchMarkets(_ context.Context, _ []string) ([]model.MarketQuote, error) {
	m.Calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Quotes, nil
}

// DefaultRetryAfter is how long Ensure waits after a failed fill before
// contacting the source again.
const DefaultRetryAfter = 30 * time.Second

// Snapshot caches the last successful fetch for the whole asset universe.
// Lookups are case-insensitive.
type Snapshot struct {
	Fetcher    Fetcher
	Assets     []string
	RetryAfter time.Duration

	ensureMu   sync.Mutex
	failedAt   time.Time
	lastFailed error

	mu     sync.RWMutex
	byName map[string]model.MarketQuote
	at     time.Time
	logger logging.Logger
}

// NewSnapshot creates an empty snapshot over assets.
func NewSnapshot(fetcher Fetcher, assets []string, logger logging.Logger) *Snapshot {
	return &Snapshot{
		Fetcher:    fetcher,
		Assets:     assets,
		RetryAfter: DefaultRetryAfter,
		byName:     map[string]model.MarketQuote{},
		logger:     logger.Named("market"),
	}
}

// Refresh replaces the cached quotes. On error the previous quotes are kept.
func (s *Snapshot) Refresh(ctx context.Context) error {
	quotes, err := s.Fetcher.FetchMarkets(ctx, s.Assets)
	if err != nil {
		s.logger.Warn("market refresh failed, keeping previous snapshot",
			logging.String("source", s.Fetcher.Name()), logging.Err(err))
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	byName := make(map[string]model.MarketQuote, len(quotes))
	for _, q := range quotes {
		byName[strings.ToLower(q.Name)] = q
	}
	s.mu.Lock()
	s.byName = byName
	s.at = time.Now()
	s.mu.Unlock()
	s.logger.Debug("market snapshot refreshed", logging.Int("quotes", len(quotes)))
	return nil
}

// Ensure fills an empty cache. After a failed fill it returns the same error
// without fetching until RetryAfter has passed. Concurrent callers share one
// fetch.
func (s *Snapshot) Ensure(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if !s.empty() {
		return nil
	}
	if s.lastFailed != nil && time.Since(s.failedAt) < s.RetryAfter {
		return s.lastFailed
	}
	if err := s.Refresh(ctx); err != nil {
		s.lastFailed, s.failedAt = err, time.Now()
		return err
	}
	s.lastFailed = nil
	return nil
}

func (s *Snapshot) empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName) == 0
}

// Lookup finds the cached quote for name. It never fetches.
func (s *Snapshot) Lookup(name string) (model.MarketQuote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.byName[strings.ToLower(name)]
	return q, ok
}

// FetchedAt reports when the cache was last filled.
func (s *Snapshot) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.at
}

// Current returns a copy of the cached quotes.
func (s *Snapshot) Current() model.MarketSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := model.MarketSnapshot{FetchedAt: s.at}
	for _, q := range s.byName {
		out.Quotes = append(out.Quotes, q)
	}
	return out
}

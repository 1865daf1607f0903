package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KYCrypto/internal/collector"
	"KYCrypto/internal/logging"
	"KYCrypto/internal/metrics"
	"KYCrypto/internal/model"
)

func TestRefreshNowFillsSnapshot(t *testing.T) {
	fetcher := &collector.MockFetcher{Quotes: []model.MarketQuote{{Name: "Bitcoin", MarketCap: "$1.2T"}}}
	snap := collector.NewSnapshot(fetcher, []string{"Bitcoin"}, logging.NewNopLogger())
	m := metrics.New()

	s := NewScheduler(context.Background(), snap, m, logging.NewNopLogger())
	s.RefreshNow()

	q, ok := snap.Lookup("bitcoin")
	require.True(t, ok)
	assert.Equal(t, "$1.2T", q.MarketCap)
	assert.Zero(t, testutil.ToFloat64(m.MarketRefreshFailures))
}

func TestRefreshFailureCounts(t *testing.T) {
	fetcher := &collector.MockFetcher{Err: errors.New("rate limited")}
	snap := collector.NewSnapshot(fetcher, []string{"Bitcoin"}, logging.NewNopLogger())
	m := metrics.New()

	s := NewScheduler(context.Background(), snap, m, logging.NewNopLogger())
	s.RefreshNow()
	s.RefreshNow()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MarketRefreshFailures))
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &collector.Snapshot{}, nil, logging.NewNopLogger())
	require.NoError(t, s.RegisterAll("0 */5 * * * *"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(context.Background(), &collector.Snapshot{}, nil, logging.NewNopLogger())
	require.NoError(t, s.RegisterAll("0 0 0 1 1 *"))
	s.Start()
	s.Stop()
}

package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KYCrypto/internal/logging"
	"KYCrypto/internal/model"
)

func TestHTTPFetcher_FetchMarkets(t *testing.T) {
	var gotIDs, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIDs = r.URL.Query().Get("ids")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]marketRow{
			{Name: "Bitcoin", MarketCap: 1.2e12, Volume: 28.5e9, PercentChange24h: 2.5},
			{Name: "", MarketCap: 1},
		})
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, "secret", "")
	quotes, err := f.FetchMarkets(context.Background(), []string{"Bitcoin", "XRP"})
	require.NoError(t, err)

	assert.Equal(t, "bitcoin,xrp", gotIDs)
	assert.Equal(t, "Bearer secret", gotAuth)
	require.Len(t, quotes, 1)
	assert.Equal(t, "$1.2T", quotes[0].MarketCap)
	assert.Equal(t, "$28.5B", quotes[0].Volume)
	assert.Equal(t, 2.5, quotes[0].PercentChange24h)
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, "", "").FetchMarkets(context.Background(), []string{"Bitcoin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$130M", FormatUSD(130e6))
	assert.Equal(t, "$5.9B", FormatUSD(5.9e9))
	assert.Equal(t, "$500B", FormatUSD(500e9))
	assert.Equal(t, model.NotAvailable, FormatUSD(0))
}

func TestSnapshot_LookupIsCaseInsensitive(t *testing.T) {
	mock := &MockFetcher{Quotes: []model.MarketQuote{{Name: "bitcoin", MarketCap: "$1.2T"}}}
	s := NewSnapshot(mock, model.AssetUniverse, logging.NewNopLogger())

	require.NoError(t, s.Ensure(context.Background()))
	q, ok := s.Lookup("Bitcoin")
	require.True(t, ok)
	assert.Equal(t, "$1.2T", q.MarketCap)

	_, ok = s.Lookup("Cardano")
	assert.False(t, ok)
	require.NoError(t, s.Ensure(context.Background()))
	assert.EqualValues(t, 1, mock.Calls.Load(), "populated cache is not refetched")
}

func TestSnapshot_EnsureBacksOffAfterFailure(t *testing.T) {
	mock := &MockFetcher{Err: errors.New("rate limited")}
	s := NewSnapshot(mock, model.AssetUniverse, logging.NewNopLogger())

	for i := 0; i < 5; i++ {
		assert.Error(t, s.Ensure(context.Background()))
	}
	assert.EqualValues(t, 1, mock.Calls.Load())
	_, ok := s.Lookup("bitcoin")
	assert.False(t, ok)

	// Once the window passes the source is tried again.
	s.RetryAfter = 0
	mock.Err = nil
	mock.Quotes = []model.MarketQuote{{Name: "Bitcoin"}}
	require.NoError(t, s.Ensure(context.Background()))
	assert.EqualValues(t, 2, mock.Calls.Load())
	_, ok = s.Lookup("bitcoin")
	assert.True(t, ok)
}

func TestSnapshot_ConcurrentEnsureFetchesOnce(t *testing.T) {
	mock := &MockFetcher{Err: errors.New("down")}
	s := NewSnapshot(mock, model.AssetUniverse, logging.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Ensure(context.Background())
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, mock.Calls.Load())
}

func TestSnapshot_RefreshErrorKeepsPrevious(t *testing.T) {
	mock := &MockFetcher{Quotes: []model.MarketQuote{{Name: "Solana", Volume: "$4B"}}}
	s := NewSnapshot(mock, model.AssetUniverse, logging.NewNopLogger())
	require.NoError(t, s.Refresh(context.Background()))

	mock.Err = errors.New("timeout")
	require.Error(t, s.Refresh(context.Background()))

	q, ok := s.Lookup("solana")
	require.True(t, ok)
	assert.Equal(t, "$4B", q.Volume)
	assert.Len(t, s.Current().Quotes, 1)
	assert.False(t, s.FetchedAt().IsZero())
}

package collector

import (
	"context"

	"KYCrypto/internal/model"
)

// Fetcher defines the interface for fetching live market metrics.
type Fetcher interface {
	// FetchMarkets returns quotes for the named assets. Assets the service
	// doesn't know are simply absent from the result.
	FetchMarkets(ctx context.Context, names []string) ([]model.MarketQuote, error)
	Name() string
}

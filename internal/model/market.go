package model

import "time"

// MarketQuote is one asset's live metrics as reported by the market-data service.
type MarketQuote struct {
	Name             string  `json:"name"`
	MarketCap        string  `json:"marketCap"`
	Volume           string  `json:"volume"`
	PercentChange24h float64 `json:"percentChange24h"`
}

// MarketSnapshot holds the quotes of one refresh.
type MarketSnapshot struct {
	Quotes    []MarketQuote
	FetchedAt time.Time
}

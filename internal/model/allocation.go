package model

// Asset names accepted from the recommendation service.
const (
	AssetBitcoin  = "Bitcoin"
	AssetEthereum = "Ethereum"
	AssetSolana   = "Solana"
	AssetXRP      = "XRP"
	AssetDogecoin = "Dogecoin"
	AssetPolkadot = "Polkadot"
	AssetCardano  = "Cardano"
)

// AssetUniverse lists the whitelisted assets in prompt order.
var AssetUniverse = []string{
	AssetBitcoin, AssetEthereum, AssetSolana, AssetXRP,
	AssetDogecoin, AssetPolkadot, AssetCardano,
}

// AssetColors maps each asset to its display color.
var AssetColors = map[string]string{
	AssetBitcoin:  "#F7931A",
	AssetEthereum: "#3C3C3D",
	AssetSolana:   "#00FFA3",
	AssetXRP:      "#346AA9",
	AssetDogecoin: "#C2A633",
	AssetPolkadot: "#E6007A",
	AssetCardano:  "#0031B4",
}

// InUniverse reports whether name is a whitelisted asset.
func InUniverse(name string) bool {
	_, ok := AssetColors[name]
	return ok
}

type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentNeutral Sentiment = "Neutral"
	SentimentBearish Sentiment = "Bearish"
)

// Volatility labels. Enriched entries carry a numeric percent string instead.
const (
	VolatilityLow    = "Low"
	VolatilityMedium = "Medium"
	VolatilityHigh   = "High"
)

// NotAvailable is the placeholder for metrics the market-data service did not return.
const NotAvailable = "N/A"

// AllocationEntry is one asset's share of a recommended portfolio.
type AllocationEntry struct {
	Name             string    `json:"name"`
	Value            float64   `json:"value"`
	Amount           *float64  `json:"amount,omitempty"`
	Color            string    `json:"color"`
	MarketCap        string    `json:"marketCap"`
	Volume           string    `json:"volume"`
	Sentiment        Sentiment `json:"sentiment"`
	Volatility       string    `json:"volatility"`
	PercentChange24h *float64  `json:"percentChange24h,omitempty"`
	Explanation      string    `json:"explanation,omitempty"`
}

type PortfolioSource string

const (
	SourceAI       PortfolioSource = "ai"
	SourceFallback PortfolioSource = "fallback"
)

// Portfolio is the result handed to the presentation layer.
type Portfolio struct {
	Type       string            `json:"type"`
	Allocation []AllocationEntry `json:"allocation"`
	Source     PortfolioSource   `json:"source"`
}

// TotalValue sums the percentage shares of entries.
func TotalValue(entries []AllocationEntry) float64 {
	total := 0.0
	for _, e := range entries {
		total += e.Value
	}
	return total
}

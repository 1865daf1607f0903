package recommend

import "KYCrypto/internal/model"

// AssetWeight is one row of a fallback allocation.
type AssetWeight struct {
	Name  string
	Value float64
}

// fallbackBase carries the display metadata of the fallback assets.
var fallbackBase = []model.AllocationEntry{
	{Name: model.AssetBitcoin, Color: "#F7931A", MarketCap: "$1.2T", Volume: "$28.5B", Sentiment: model.SentimentBullish, Volatility: model.VolatilityMedium},
	{Name: model.AssetEthereum, Color: "#3C3C3D", MarketCap: "$500B", Volume: "$18.3B", Sentiment: model.SentimentBullish, Volatility: model.VolatilityMedium},
	{Name: model.AssetSolana, Color: "#00FFA3", MarketCap: "$50B", Volume: "$4B", Sentiment: model.SentimentNeutral, Volatility: model.VolatilityHigh},
	{Name: model.AssetXRP, Color: "#346AA9", MarketCap: "$40B", Volume: "$3B", Sentiment: model.SentimentNeutral, Volatility: model.VolatilityMedium},
	{Name: model.AssetDogecoin, Color: "#C2A633", MarketCap: "$20B", Volume: "$2B", Sentiment: model.SentimentNeutral, Volatility: model.VolatilityHigh},
}

// BaselineWeights is the allocation used for medium or unknown risk tolerance.
var BaselineWeights = []AssetWeight{
	{model.AssetBitcoin, 40},
	{model.AssetEthereum, 25},
	{model.AssetSolana, 15},
	{model.AssetXRP, 10},
	{model.AssetDogecoin, 10},
}

// FallbackPolicy maps risk tolerance to the fallback weights. Low tolerance
// favors Bitcoin and Ethereum; high tolerance favors Solana, XRP and
// Dogecoin. Every row sums to 100.
var FallbackPolicy = map[model.RiskTolerance][]AssetWeight{
	model.RiskLow: {
		{model.AssetBitcoin, 55},
		{model.AssetEthereum, 30},
		{model.AssetSolana, 5},
		{model.AssetXRP, 5},
		{model.AssetDogecoin, 5},
	},
	model.RiskMedium: BaselineWeights,
	model.RiskHigh: {
		{model.AssetBitcoin, 25},
		{model.AssetEthereum, 20},
		{model.AssetSolana, 25},
		{model.AssetXRP, 15},
		{model.AssetDogecoin, 15},
	},
}

var fallbackTypes = map[model.RiskTolerance]string{
	model.RiskLow:    "Conservative",
	model.RiskMedium: "Balanced",
	model.RiskHigh:   "Aggressive",
}

// Fallback builds the static portfolio for the given risk tolerance.
func Fallback(risk model.RiskTolerance) model.Portfolio {
	weights, ok := FallbackPolicy[risk]
	if !ok {
		weights = BaselineWeights
	}
	byName := make(map[string]float64, len(weights))
	for _, w := range weights {
		byName[w.Name] = w.Value
	}

	entries := make([]model.AllocationEntry, 0, len(fallbackBase))
	for _, base := range fallbackBase {
		e := base
		e.Value = byName[base.Name]
		entries = append(entries, e)
	}

	typ, ok := fallbackTypes[risk]
	if !ok {
		typ = "Balanced"
	}
	return model.Portfolio{Type: typ, Allocation: entries, Source: model.SourceFallback}
}

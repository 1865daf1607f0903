package recommend

import (
	"fmt"
	"strings"

	"KYCrypto/internal/model"
)

// schemaExample is the reference metadata the service is asked to echo back.
var schemaExample = []struct {
	Name, MarketCap, Volume string
}{
	{model.AssetBitcoin, "$1.2T", "$28.5B"},
	{model.AssetEthereum, "$500B", "$18.3B"},
	{model.AssetSolana, "$50B", "$4B"},
	{model.AssetXRP, "$40B", "$3B"},
	{model.AssetDogecoin, "$20B", "$2B"},
	{model.AssetPolkadot, "$5.9B", "$130M"},
	{model.AssetCardano, "$12.5B", "$250M"},
}

// BuildPrompt describes the investor profile and pins the response schema.
func BuildPrompt(a model.QuestionnaireAnswers) string {
	var b strings.Builder
	b.WriteString("Based on the following investor profile, suggest a cryptocurrency portfolio allocation with percentages, risk assessment, and relevant metrics:\n")
	b.WriteString(fmt.Sprintf("    - Age: %s\n", a.Age))
	b.WriteString(fmt.Sprintf("    - Investment Goal: %s\n", a.InvestmentGoal))
	b.WriteString(fmt.Sprintf("    - Time Horizon: %s\n", a.TimeHorizon))
	b.WriteString(fmt.Sprintf("    - Risk Tolerance: %s\n", a.RiskTolerance))
	b.WriteString(fmt.Sprintf("    - Experience Level: %s\n", a.ExperienceLevel))
	b.WriteString(fmt.Sprintf("    - Investment Amount: $%s\n", formatAmount(a.InvestmentAmount)))
	b.WriteString(fmt.Sprintf("    - Market Expectation: %s\n", a.MarketExpectation))
	b.WriteString(fmt.Sprintf("    - Volatility Comfort: %s\n\n", a.VolatilityComfort))

	b.WriteString("Provide only the response in the following JSON format, including only the most suitable cryptocurrencies from ")
	b.WriteString(strings.Join(model.AssetUniverse[:len(model.AssetUniverse)-1], ", "))
	b.WriteString(" and " + model.AssetUniverse[len(model.AssetUniverse)-1] + ".\n")
	b.WriteString("The percentage values must add up to 100.\n\n")

	b.WriteString("{\n  \"type\": \"Conservative|Balanced|Aggressive\",\n  \"allocation\": [\n")
	for i, s := range schemaExample {
		b.WriteString("    {\n")
		b.WriteString(fmt.Sprintf("      \"name\": %q,\n", s.Name))
		b.WriteString("      \"value\": <percentage allocation>,\n")
		b.WriteString("      \"amount\": <investment amount allocation>,\n")
		b.WriteString(fmt.Sprintf("      \"color\": %q,\n", model.AssetColors[s.Name]))
		b.WriteString(fmt.Sprintf("      \"marketCap\": %q,\n", s.MarketCap))
		b.WriteString(fmt.Sprintf("      \"volume\": %q,\n", s.Volume))
		b.WriteString("      \"sentiment\": \"Bullish|Neutral|Bearish\",\n")
		b.WriteString("      \"volatility\": \"Low|Medium|High\",\n")
		b.WriteString("      \"explanation\": <explanation on why the user should buy this crypto based on their inputs>\n")
		if i < len(schemaExample)-1 {
			b.WriteString("    },\n")
		} else {
			b.WriteString("    }\n")
		}
	}
	b.WriteString("  ]\n}")
	return b.String()
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"KYCrypto/internal/model"
)

func TestFallbackPolicyRowsSumTo100(t *testing.T) {
	for risk, row := range FallbackPolicy {
		total := 0.0
		for _, w := range row {
			assert.True(t, model.InUniverse(w.Name), w.Name)
			total += w.Value
		}
		assert.Equal(t, 100.0, total, string(risk))
	}
}

func TestFallbackSkew(t *testing.T) {
	low := Fallback(model.RiskLow)
	base := Fallback(model.RiskMedium)
	high := Fallback(model.RiskHigh)

	// Index 0 is Bitcoin (lowest volatility), index 4 is Dogecoin.
	assert.Greater(t, low.Allocation[0].Value, base.Allocation[0].Value)
	assert.Less(t, high.Allocation[0].Value, base.Allocation[0].Value)
	assert.Greater(t, high.Allocation[4].Value, base.Allocation[4].Value)
	assert.Less(t, low.Allocation[4].Value, base.Allocation[4].Value)

	assert.Equal(t, model.SourceFallback, low.Source)
	assert.Equal(t, "Aggressive", high.Type)
}

func TestFallbackUnknownRiskUsesBaseline(t *testing.T) {
	p := Fallback("reckless")
	assert.Equal(t, "Balanced", p.Type)
	for i, w := range BaselineWeights {
		assert.Equal(t, w.Value, p.Allocation[i].Value)
	}
}

func TestFallbackDoesNotShareState(t *testing.T) {
	p := Fallback(model.RiskLow)
	p.Allocation[0].Value = 0
	assert.Equal(t, 55.0, Fallback(model.RiskLow).Allocation[0].Value)
}

func TestBuildPromptListsUniverse(t *testing.T) {
	prompt := BuildPrompt(answers(model.RiskLow))
	for _, name := range model.AssetUniverse {
		assert.Contains(t, prompt, `"name": "`+name+`"`)
	}
	assert.Contains(t, prompt, "Investment Amount: $1000")
	assert.Contains(t, prompt, "Polkadot and Cardano")
}

package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"auri/internal/domain/models"
)

func TestLocalDecisionHighRisk(t *testing.T) {
	snap := models.TokenMarketSnapshot{Liquidity: f(15000)}
	n := LocalDecision(models.TokenRiskMetrics{
		LiquidityUSD:     f(15000),
		PriceChange1hPct: f(12),
	}, snap)

	assert.Equal(t, RiskHigh, n.Risk)
	assert.Contains(t, n.Justification, "$15,000")
	assert.Equal(t, 15000.0, n.Factors["liquidity"])
	assert.Nil(t, n.Factors["market_cap"])
}

func TestLocalDecisionLowRisk(t *testing.T) {
	n := LocalDecision(models.TokenRiskMetrics{
		LiquidityUSD:     f(50000),
		PriceChange1hPct: f(10),
	}, models.TokenMarketSnapshot{})

	assert.Equal(t, RiskLow, n.Risk)
	assert.Contains(t, n.Justification, "$50,000")
	assert.Contains(t, n.Justification, "10.00%")
	assert.Len(t, n.Factors, 7)
}

func TestLocalDecisionExtremeMove(t *testing.T) {
	n := LocalDecision(models.TokenRiskMetrics{
		LiquidityUSD:     f(100000),
		PriceChange1hPct: f(-75),
	}, models.TokenMarketSnapshot{})

	assert.Equal(t, RiskHigh, n.Risk)
	assert.Contains(t, n.Justification, "-75.00%")
}

func TestLocalDecisionInterpolatesSnapshot(t *testing.T) {
	snap := models.TokenMarketSnapshot{
		Price:             f(1.25),
		Liquidity:         f(15000),
		MarketCap:         f(9000000),
		FDV:               f(12000000),
		TotalSupply:       f(1000000000),
		CirculatingSupply: f(400000000),
	}
	n := LocalDecision(models.TokenRiskMetrics{LiquidityUSD: f(15000)}, snap)

	assert.Equal(t, RiskHigh, n.Risk)
	assert.Contains(t, n.Justification, "price $1.25")
	assert.Contains(t, n.Justification, "market cap $9,000,000")
	assert.Contains(t, n.Justification, "FDV $12,000,000")
	assert.Contains(t, n.Justification, "supply 1,000,000,000")
	assert.Contains(t, n.Justification, "circulating 400,000,000")
}

func TestLocalDecisionUnknownIsSafe(t *testing.T) {
	n := LocalDecision(models.TokenRiskMetrics{}, models.TokenMarketSnapshot{})
	assert.Equal(t, RiskLow, n.Risk)
	assert.Contains(t, n.Justification, "unknown")
}

func TestGroupThousands(t *testing.T) {
	cases := map[float64]string{
		0:         "0",
		999:       "999",
		1000:      "1,000",
		20000:     "20,000",
		1234567.5: "1,234,567.5",
		-42000:    "-42,000",
		15000.25:  "15,000.25",
	}
	for in, want := range cases {
		assert.Equal(t, want, groupThousands(in), "input %v", in)
	}
}

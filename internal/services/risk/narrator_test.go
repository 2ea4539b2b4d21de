package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auri/internal/domain/models"
	"auri/pkg/logger"
)

func TestNarrateWithoutClientUsesFallback(t *testing.T) {
	n, err := NewNarrator(context.Background(), "", logger.New())
	require.NoError(t, err)
	assert.Equal(t, "local", n.Model())

	narrative, raw, usedFallback := n.Narrate(context.Background(), models.TokenRiskMetrics{
		Mint:         "mintA",
		LiquidityUSD: f(15000),
	}, models.TokenMarketSnapshot{})

	assert.True(t, usedFallback)
	assert.Empty(t, raw)
	assert.Equal(t, RiskHigh, narrative.Risk)
}

func TestParseNarrativePlainJSON(t *testing.T) {
	n, err := parseNarrative(`{"risk":"HIGH_RISK","justification":"thin book"}`,
		models.TokenMarketSnapshot{Price: f(1.5)})
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, n.Risk)
	assert.Equal(t, "thin book", n.Justification)
	require.NotNil(t, n.Results.Price)
	assert.Equal(t, 1.5, *n.Results.Price)
}

func TestParseNarrativeFactorsObject(t *testing.T) {
	n, err := parseNarrative(`{"risk":"LOW_RISK","justification":"ok","factors":{"price":1.2,"liquidity":30000}}`,
		models.TokenMarketSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, 1.2, n.Factors["price"])
	assert.Equal(t, 30000.0, n.Factors["liquidity"])
}

func TestParseNarrativeFillsMissingFactors(t *testing.T) {
	n, err := parseNarrative(`{"risk":"LOW_RISK","justification":"ok"}`,
		models.TokenMarketSnapshot{Liquidity: f(5000)})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, n.Factors["liquidity"])
}

func TestParseNarrativeStripsFences(t *testing.T) {
	raw := "```json\n{\"risk\":\"low_risk\",\"justification\":\"ok\"}\n```"
	n, err := parseNarrative(raw, models.TokenMarketSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, RiskLow, n.Risk)
}

func TestParseNarrativeRejectsGarbage(t *testing.T) {
	_, err := parseNarrative(`the token looks fine to me`, models.TokenMarketSnapshot{})
	assert.Error(t, err)

	_, err = parseNarrative(`{"risk":"MEDIUM","justification":"?"}`, models.TokenMarketSnapshot{})
	assert.Error(t, err)
}

func TestParseNarrativeKeepsModelResults(t *testing.T) {
	n, err := parseNarrative(`{"risk":"LOW_RISK","justification":"ok","results":{"price":2}}`,
		models.TokenMarketSnapshot{Price: f(9)})
	require.NoError(t, err)
	require.NotNil(t, n.Results.Price)
	assert.Equal(t, 2.0, *n.Results.Price)
}

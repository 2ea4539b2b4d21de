package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"auri/internal/domain/models"
)

// Risk labels produced by the narrator and the local fallback.
const (
	RiskHigh = "HIGH_RISK"
	RiskLow  = "LOW_RISK"
)

// LocalDecision is the deterministic fallback used when no model is
// configured or the model response is unusable. It flags HIGH_RISK on low
// liquidity or extreme 1h movement; unknown values are treated as safe.
func LocalDecision(m models.TokenRiskMetrics, snapshot models.TokenMarketSnapshot) models.RiskNarrative {
	lowLiquidity := m.LiquidityUSD != nil && *m.LiquidityUSD < MinLiquidityUSD
	extremeMove := m.PriceChange1hPct != nil && math.Abs(*m.PriceChange1hPct) > MaxAbsChange1h

	liq := formatUSD(m.LiquidityUSD)
	change := formatPct(m.PriceChange1hPct)
	context := fmt.Sprintf(
		"price %s, market cap %s, FDV %s, supply %s (circulating %s)",
		formatUSD(snapshot.Price), formatUSD(snapshot.MarketCap), formatUSD(snapshot.FDV),
		formatAmount(snapshot.TotalSupply), formatAmount(snapshot.CirculatingSupply))

	if lowLiquidity || extremeMove {
		return models.RiskNarrative{
			Risk: RiskHigh,
			Justification: fmt.Sprintf(
				"Liquidity %s is below the $20,000 floor or the 1h price change %s exceeds ±50%%. Additional context: %s.",
				liq, change, context),
			Results: snapshot,
			Factors: snapshotFactors(snapshot),
		}
	}

	return models.RiskNarrative{
		Risk: RiskLow,
		Justification: fmt.Sprintf(
			"Liquidity %s and 1h price change %s are within acceptable bounds. Context: %s.",
			liq, change, context),
		Results: snapshot,
		Factors: snapshotFactors(snapshot),
	}
}

// snapshotFactors mirrors the market snapshot as the narrative factors object.
func snapshotFactors(snapshot models.TokenMarketSnapshot) map[string]interface{} {
	b, _ := json.Marshal(snapshot)
	var out map[string]interface{}
	_ = json.Unmarshal(b, &out)
	return out
}

// formatUSD renders a dollar amount with thousands separators, or "unknown".
func formatUSD(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return "$" + groupThousands(*v)
}

// formatAmount renders a plain amount with thousands separators, or "unknown".
func formatAmount(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return groupThousands(*v)
}

func formatPct(v *float64) string {
	if v == nil {
		return "unknown"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func groupThousands(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")

	intPart := s
	var fracPart string
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

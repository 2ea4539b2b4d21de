package risk

import (
	"math"

	"auri/internal/domain/models"
)

// Rule thresholds. An unknown metric never fails its rule.
const (
	MinLiquidityUSD = 20000.0
	MaxAbsChange1h  = 50.0
	MaxTop10Percent = 40.0
	MinAgeHours     = 48.0
)

// Evaluate runs the four risk rules over the metrics. It is pure and total:
// nil metric values pass their rule.
func Evaluate(m models.TokenRiskMetrics) []models.RuleCheck {
	checks := make([]models.RuleCheck, 0, 4)

	checks = append(checks, models.RuleCheck{
		Name:      "liquidity",
		OK:        !(m.LiquidityUSD != nil && *m.LiquidityUSD < MinLiquidityUSD),
		Value:     m.LiquidityUSD,
		Threshold: MinLiquidityUSD,
		Operator:  ">=",
		Detail:    "Liquidity must be at least $20,000",
	})

	checks = append(checks, models.RuleCheck{
		Name:      "price_1h",
		OK:        !(m.PriceChange1hPct != nil && math.Abs(*m.PriceChange1hPct) > MaxAbsChange1h),
		Value:     m.PriceChange1hPct,
		Threshold: MaxAbsChange1h,
		Operator:  "<= |Δ|",
		Detail:    "1h price change must stay within ±50%",
	})

	checks = append(checks, models.RuleCheck{
		Name:      "top10",
		OK:        !(m.Top10HolderPct != nil && *m.Top10HolderPct > MaxTop10Percent),
		Value:     m.Top10HolderPct,
		Threshold: MaxTop10Percent,
		Operator:  "<=",
		Detail:    "Top 10 holders must control at most 40% of supply",
	})

	checks = append(checks, models.RuleCheck{
		Name:      "age_hours",
		OK:        !(m.AgeHours != nil && *m.AgeHours < MinAgeHours),
		Value:     m.AgeHours,
		Threshold: MinAgeHours,
		Operator:  ">=",
		Detail:    "Token must be at least 48 hours old",
	})

	return checks
}

// AnyFailed reports whether any rule check failed.
func AnyFailed(checks []models.RuleCheck) bool {
	for _, c := range checks {
		if !c.OK {
			return true
		}
	}
	return false
}

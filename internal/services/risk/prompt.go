package risk

import (
	"encoding/json"
	"fmt"

	"auri/internal/domain/models"
)

// buildPrompt renders the narrator instruction for one mint. The model must
// answer with a single JSON object and nothing else.
func buildPrompt(m models.TokenRiskMetrics, snapshot models.TokenMarketSnapshot) string {
	metricsJSON, _ := json.Marshal(m)
	snapshotJSON, _ := json.Marshal(snapshot)

	return fmt.Sprintf(`You are a Solana token risk analyst. Assess the token below and respond with ONLY a JSON object, no prose and no markdown fences.

Token mint: %s
Risk metrics: %s
Market snapshot: %s

Classification guidance:
- Liquidity under $20,000 is a strong HIGH_RISK signal.
- A 1-hour price change beyond +/-50%% is a strong HIGH_RISK signal.
- Null metrics mean the data was unavailable; do not count them against the token.

Respond with exactly this shape, where factors echoes the market snapshot object verbatim:
{"risk":"HIGH_RISK"|"LOW_RISK","justification":"<one or two sentences>","results":%s,"factors":%s}`,
		m.Mint, metricsJSON, snapshotJSON, snapshotJSON, snapshotJSON)
}

package models

// AnalyzeRequest is the body of POST /api/risk/analyze. At least one of
// WalletAddress or Mints must be present.
type AnalyzeRequest struct {
	WalletAddress string   `json:"walletAddress" validate:"omitempty,min=32,max=44"`
	Mints         []string `json:"mints" validate:"omitempty,dive,min=32,max=44"`
}

// TokenMarketSnapshot is the normalized market view of one mint. Absent
// upstream values stay nil and marshal as null.
type TokenMarketSnapshot struct {
	Price             *float64 `json:"price"`
	Liquidity         *float64 `json:"liquidity"`
	MarketCap         *float64 `json:"market_cap"`
	FDV               *float64 `json:"fdv"`
	TotalSupply       *float64 `json:"total_supply"`
	CirculatingSupply *float64 `json:"circulating_supply"`
	PriceChange1h     *float64 `json:"priceChange1h"`
}

// TokenRiskMetrics is the evaluator input for one mint.
type TokenRiskMetrics struct {
	Mint             string   `json:"mint"`
	PriceUSD         *float64 `json:"priceUsd"`
	LiquidityUSD     *float64 `json:"liquidityUsd"`
	PriceChange1hPct *float64 `json:"priceChange1hPct"`
	Top10HolderPct   *float64 `json:"top10HolderPercent"`
	AgeHours         *float64 `json:"ageHours"`
}

// RuleCheck is one evaluated rule.
type RuleCheck struct {
	Name      string   `json:"name"`
	OK        bool     `json:"ok"`
	Value     *float64 `json:"value"`
	Threshold float64  `json:"threshold"`
	Operator  string   `json:"operator"`
	Detail    string   `json:"detail"`
}

// RiskNarrative is the narrator's structured decision. Factors echoes the
// market-data object the decision was based on.
type RiskNarrative struct {
	Risk          string                 `json:"risk"`
	Justification string                 `json:"justification"`
	Results       TokenMarketSnapshot    `json:"results"`
	Factors       map[string]interface{} `json:"factors,omitempty"`
}

// RiskVerdict is the full per-mint outcome.
type RiskVerdict struct {
	Mint         string           `json:"mint"`
	Metrics      TokenRiskMetrics `json:"metrics"`
	Rules        []RuleCheck      `json:"rules"`
	Narrative    RiskNarrative    `json:"narrative"`
	UsedFallback bool             `json:"usedFallback"`
	RawNarration string           `json:"rawNarration,omitempty"`
}

// Debug carries request-level diagnostics.
type Debug struct {
	Total  int    `json:"total"`
	TS     int64  `json:"ts"`
	Model  string `json:"model"`
	Cached bool   `json:"cached,omitempty"`
}

// WalletRiskResponse is the analyze response payload. WalletAddress is null
// for mint-only requests.
type WalletRiskResponse struct {
	WalletAddress *string       `json:"walletAddress"`
	Results       []RiskVerdict `json:"results"`
	Lock          bool          `json:"lock"`
	State         string        `json:"state"`
	Debug         Debug         `json:"debug"`
}

// Wallet states.
const (
	StateLockdown = "Lockdown"
	StateCalm     = "Calm"
)

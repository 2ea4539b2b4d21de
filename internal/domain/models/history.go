package models

// PricePoint is one merged daily sample of the SOL/mSOL comparison chart.
type PricePoint struct {
	Date string  `json:"date"`
	SOL  float64 `json:"SOL"`
	MSOL float64 `json:"mSOL"`
}

// PriceHistoryResponse is the /api/market/sol-msol payload.
type PriceHistoryResponse struct {
	Data []PricePoint `json:"data"`
	TS   int64        `json:"ts"`
}

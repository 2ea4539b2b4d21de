package repository

import (
	"context"
	"time"

	"auri/internal/domain/models"
)

// MarketDataSource fetches normalized market data for a mint.
type MarketDataSource interface {
	MarketData(ctx context.Context, mint string) (*models.TokenMarketSnapshot, error)
	CreatedAt(ctx context.Context, mint string) (*time.Time, error)
}

// MintResolver discovers the token mints a wallet holds.
type MintResolver interface {
	HeldMints(ctx context.Context, wallet string) ([]string, error)
	Top10HolderPercent(ctx context.Context, mint string) (*float64, error)
}

// Narrator turns metrics into a risk narrative. Implementations never fail:
// on any error they return a deterministic local decision and report it via
// usedFallback.
type Narrator interface {
	Narrate(ctx context.Context, m models.TokenRiskMetrics, snapshot models.TokenMarketSnapshot) (narrative models.RiskNarrative, raw string, usedFallback bool)
	Model() string
}

// VerdictAuditor persists computed verdicts for offline analysis.
// Implementations are best-effort; failures must not fail the request.
type VerdictAuditor interface {
	Record(ctx context.Context, wallet string, verdicts []models.RiskVerdict) error
}

// EventPublisher emits a compact risk event per analyzed wallet.
type EventPublisher interface {
	PublishRiskEvent(ctx context.Context, wallet string, lock bool, state string) error
}

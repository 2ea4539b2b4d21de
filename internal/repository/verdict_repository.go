package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"auri/internal/domain/models"
	"auri/pkg/clickhouse"
	"auri/pkg/logger"
)

// ClickHouseVerdictStore persists one row per analyzed mint for offline
// analysis. Inserts are best-effort; the orchestrator ignores failures.
type ClickHouseVerdictStore struct {
	client *clickhouse.Client
	table  string
	log    *logger.Logger
}

// NewClickHouseVerdictStore creates the store and ensures the table exists.
func NewClickHouseVerdictStore(ctx context.Context, client *clickhouse.Client, table string, log *logger.Logger) (*ClickHouseVerdictStore, error) {
	s := &ClickHouseVerdictStore{client: client, table: table, log: log}
	if err := client.InitSchema(ctx, []string{s.schemaDDL()}); err != nil {
		return nil, fmt.Errorf("verdict store schema: %w", err)
	}
	return s, nil
}

func (s *ClickHouseVerdictStore) schemaDDL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts              DateTime64(3),
		wallet          String,
		mint            String,
		liquidity_usd   Nullable(Float64),
		price_usd       Nullable(Float64),
		change_1h_pct   Nullable(Float64),
		top10_pct       Nullable(Float64),
		age_hours       Nullable(Float64),
		failed_rules    Array(String),
		risk            LowCardinality(String),
		used_fallback   UInt8,
		lock            UInt8
	) ENGINE = MergeTree() ORDER BY (wallet, ts)`, s.table)
}

// Record inserts one row per verdict.
func (s *ClickHouseVerdictStore) Record(ctx context.Context, wallet string, verdicts []models.RiskVerdict) error {
	if len(verdicts) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(ts, wallet, mint, liquidity_usd, price_usd, change_1h_pct, top10_pct, age_hours, failed_rules, risk, used_fallback, lock)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)

	now := time.Now().UTC()
	for _, v := range verdicts {
		var failed []string
		for _, r := range v.Rules {
			if !r.OK {
				failed = append(failed, r.Name)
			}
		}
		lock := boolToUInt8(strings.Contains(strings.ToUpper(v.Narrative.Risk), "HIGH") || len(failed) > 0)

		_, err := s.client.DB().ExecContext(ctx, query,
			now, wallet, v.Mint,
			v.Metrics.LiquidityUSD, v.Metrics.PriceUSD, v.Metrics.PriceChange1hPct,
			v.Metrics.Top10HolderPct, v.Metrics.AgeHours,
			failed, v.Narrative.Risk, boolToUInt8(v.UsedFallback), lock,
		)
		if err != nil {
			return fmt.Errorf("insert verdict for %s: %w", v.Mint, err)
		}
	}
	return nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// NoopAuditor satisfies the auditor interface when auditing is disabled.
type NoopAuditor struct{}

// Record does nothing.
func (NoopAuditor) Record(ctx context.Context, wallet string, verdicts []models.RiskVerdict) error {
	return nil
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auri/internal/domain/models"
	"auri/internal/repository"
	"auri/internal/services/risk"
	"auri/pkg/cache"
	httppkg "auri/pkg/http"
	"auri/pkg/logger"
)

const (
	solMint  = "So11111111111111111111111111111111111111112"
	usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	msolMint = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
)

func f(v float64) *float64 { return &v }

type fakeMarket struct {
	snapshots map[string]models.TokenMarketSnapshot
	err       error
	calls     []string
}

func (m *fakeMarket) MarketData(ctx context.Context, mint string) (*models.TokenMarketSnapshot, error) {
	m.calls = append(m.calls, mint)
	if m.err != nil {
		return nil, m.err
	}
	snap := m.snapshots[mint]
	return &snap, nil
}

func (m *fakeMarket) CreatedAt(ctx context.Context, mint string) (*time.Time, error) {
	return nil, nil
}

type fakeResolver struct {
	held []string
	err  error
}

func (r *fakeResolver) HeldMints(ctx context.Context, wallet string) ([]string, error) {
	return r.held, r.err
}

func (r *fakeResolver) Top10HolderPercent(ctx context.Context, mint string) (*float64, error) {
	return nil, nil
}

type fakeNarrator struct{}

func (fakeNarrator) Narrate(ctx context.Context, m models.TokenRiskMetrics, snapshot models.TokenMarketSnapshot) (models.RiskNarrative, string, bool) {
	return risk.LocalDecision(m, snapshot), "", true
}

func (fakeNarrator) Model() string { return "local" }

func defaultConfig() RiskAnalyzerConfig {
	return RiskAnalyzerConfig{
		CacheTTL:     60 * time.Second,
		CacheVersion: "v2",
		MaxMints:     25,
		NativeMint:   solMint,
		ChainFetch:   true,
	}
}

func newAnalyzer(cfg RiskAnalyzerConfig, market *fakeMarket, resolver *fakeResolver) *RiskAnalyzer {
	return NewRiskAnalyzer(cfg, market, resolver, fakeNarrator{},
		cache.NewMemoryCache(), repository.NoopAuditor{}, repository.NoopPublisher{},
		nil, logger.New())
}

func TestAnalyzeRequiresWalletOrMints(t *testing.T) {
	a := newAnalyzer(defaultConfig(), &fakeMarket{}, &fakeResolver{})

	_, err := a.Analyze(context.Background(), models.AnalyzeRequest{})
	require.Error(t, err)
	var appErr *httppkg.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "walletAddress or mints is required", appErr.Message)
}

func TestAnalyzeRejectsInvalidMint(t *testing.T) {
	a := newAnalyzer(defaultConfig(), &fakeMarket{}, &fakeResolver{})

	_, err := a.Analyze(context.Background(), models.AnalyzeRequest{Mints: []string{"not-a-mint"}})
	require.Error(t, err)
	var appErr *httppkg.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.Status)
}

func TestAnalyzeDefaultsToNativeMint(t *testing.T) {
	market := &fakeMarket{snapshots: map[string]models.TokenMarketSnapshot{
		solMint: {Liquidity: f(1000000), PriceChange1h: f(1)},
	}}
	a := newAnalyzer(defaultConfig(), market, &fakeResolver{})

	resp, err := a.Analyze(context.Background(), models.AnalyzeRequest{WalletAddress: "wallet1"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, solMint, resp.Results[0].Mint)
	assert.False(t, resp.Lock)
	assert.Equal(t, models.StateCalm, resp.State)
}

func TestAnalyzeExplicitBeforeHeldWithDedupe(t *testing.T) {
	market := &fakeMarket{snapshots: map[string]models.TokenMarketSnapshot{}}
	resolver := &fakeResolver{held: []string{usdcMint, msolMint}}
	a := newAnalyzer(defaultConfig(), market, resolver)

	resp, err := a.Analyze(context.Background(), models.AnalyzeRequest{
		WalletAddress: "wallet1",
		Mints:         []string{msolMint},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, msolMint, resp.Results[0].Mint)
	assert.Equal(t, usdcMint, resp.Results[1].Mint)
}

func TestAnalyzeCapsMintCount(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxMints = 1
	market := &fakeMarket{snapshots: map[string]models.TokenMarketSnapshot{}}
	resolver := &fakeResolver{held: []string{usdcMint, msolMint}}
	a := newAnalyzer(cfg, market, resolver)

	resp, err := a.Analyze(context.Background(), models.AnalyzeRequest{WalletAddress: "wallet1"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, usdcMint, resp.Results[0].Mint)
}

func TestAnalyzeMintOnlyWalletIsNull(t *testing.T) {
	market := &fakeMarket{snapshots: map[string]models.TokenMarketSnapshot{}}
	a := newAnalyzer(defaultConfig(), market, &fakeResolver{})

	resp, err := a.Analyze(context.Background(), models.AnalyzeRequest{Mints: []string{usdcMint}})
	require.NoError(t, err)
	assert.Nil(t, resp.WalletAddress)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"walletAddress":null`)

	resp, err = a.Analyze(context.Background(), models.AnalyzeRequest{WalletAddress: "wallet1"})
	require.NoError(t, err)
	require.NotNil(t, resp.WalletAddress)
	assert.Equal(t, "wallet1", *resp.WalletAddress)
}

func TestAnalyzeLockOnFailedRule(t *testing.T) {
	market := &fakeMarket{snapshots: map[string]models.TokenMarketSnapshot{
		usdcMint: {Liquidity: f(5000)},
	}}
	a := newAnalyzer(defaultConfig(), market, &fakeResolver{})

	resp, err := a.Analyze(context.Background(), models.AnalyzeRequest{Mints: []string{usdcMint}})
	require.NoError(t, err)
	assert.True(t, resp.Lock)
	assert.Equal(t, models.StateLockdown, resp.State)
	assert.True(t, resp.Results[0].UsedFallback)
	assert.Equal(t, risk.RiskHigh, resp.Results[0].Narrative.Risk)
}

func TestAnalyzeDegradesOnFetchFailure(t *testing.T) {
	market := &fakeMarket{err: errors.New("upstream 500")}
	a := newAnalyzer(defaultConfig(), market, &fakeResolver{})

	resp, err := a.Analyze(context.Background(), models.AnalyzeRequest{Mints: []string{usdcMint}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	v := resp.Results[0]
	assert.Nil(t, v.Metrics.LiquidityUSD)
	assert.Nil(t, v.Metrics.PriceUSD)
	for _, c := range v.Rules {
		assert.True(t, c.OK, "rule %s must pass on unknown data", c.Name)
	}
	assert.False(t, resp.Lock)
}

func TestAnalyzeCacheRoundTrip(t *testing.T) {
	market := &fakeMarket{snapshots: map[string]models.TokenMarketSnapshot{
		usdcMint: {Liquidity: f(100000)},
	}}
	a := newAnalyzer(defaultConfig(), market, &fakeResolver{})
	req := models.AnalyzeRequest{Mints: []string{usdcMint}}

	first, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Debug.Cached)

	second, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Debug.Cached)
	assert.Equal(t, first.Results, second.Results)
	assert.Len(t, market.calls, 1, "second request must be served from cache")
}

func TestAnalyzeResolverFailureDegrades(t *testing.T) {
	market := &fakeMarket{snapshots: map[string]models.TokenMarketSnapshot{}}
	resolver := &fakeResolver{err: errors.New("rpc down")}
	a := newAnalyzer(defaultConfig(), market, resolver)

	resp, err := a.Analyze(context.Background(), models.AnalyzeRequest{WalletAddress: "wallet1"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, solMint, resp.Results[0].Mint)
}
